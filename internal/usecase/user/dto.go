package user

import (
	domain "placeholder-mirror/internal/domain/user"
)

// CreateUserRequest represents the request payload for creating a new user.
// Only presence of the identifying fields is checked; zero values count as missing.
type CreateUserRequest struct {
	ID       int64          `json:"id" validate:"required"`
	Name     string         `json:"name" validate:"required"`
	Username string         `json:"username" validate:"required"`
	Email    string         `json:"email" validate:"required"`
	Address  domain.Address `json:"address"`
	Phone    string         `json:"phone"`
	Website  string         `json:"website"`
	Company  domain.Company `json:"company"`
}

// ToDomain converts the request into the stored user record.
func (r CreateUserRequest) ToDomain() domain.User {
	return domain.User{
		ID:       r.ID,
		Name:     r.Name,
		Username: r.Username,
		Email:    r.Email,
		Address:  r.Address,
		Phone:    r.Phone,
		Website:  r.Website,
		Company:  r.Company,
	}
}
