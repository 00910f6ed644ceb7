package user

import (
	"context"

	domain "placeholder-mirror/internal/domain/user"
)

// Service defines the interface for user business logic operations.
// Raw ids come straight from the request path and are parsed here.
type Service interface {
	GetUserByID(ctx context.Context, rawID string) (*domain.UserDetail, error)
	CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error)
	DeleteUserByID(ctx context.Context, rawID string) error
	DeleteAllUsers(ctx context.Context) error
}

var _ Service = (*Usecase)(nil)
