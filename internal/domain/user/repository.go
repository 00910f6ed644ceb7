package user

import (
	"context"
	"errors"
)

// ErrStoreNotInitialized is returned by Gateway.Collections before Connect succeeds.
var ErrStoreNotInitialized = errors.New("database not initialized")

// UserRepository defines data access for the users collection.
type UserRepository interface {
	InsertMany(ctx context.Context, users []User) error    // Bulk insert, no-op for an empty slice
	InsertOne(ctx context.Context, u *User) error          // Insert a single user verbatim
	FindByID(ctx context.Context, id int64) (*User, error) // Returns nil, nil when absent
	DeleteByID(ctx context.Context, id int64) error        // Delete the user with the given id
	DeleteAll(ctx context.Context) error                   // Remove every user
}

// PostRepository defines data access for the posts collection.
type PostRepository interface {
	InsertMany(ctx context.Context, posts []Post) error
	FindByUserID(ctx context.Context, userID int64) ([]Post, error)
	DeleteByUserID(ctx context.Context, userID int64) error
	DeleteAll(ctx context.Context) error
}

// CommentRepository defines data access for the comments collection.
type CommentRepository interface {
	InsertMany(ctx context.Context, comments []Comment) error
	FindByPostID(ctx context.Context, postID int64) ([]Comment, error)
	DeleteByPostIDs(ctx context.Context, postIDs []int64) error // Delete comments whose postId is in the set
	DeleteAll(ctx context.Context) error
}

// Collections bundles the three named collections of the mirror.
type Collections struct {
	Users    UserRepository
	Posts    PostRepository
	Comments CommentRepository
}

// Gateway owns the single storage connection of the process.
// Connect and Close are idempotent.
type Gateway interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	Collections() (*Collections, error)
}
