package repositories

import (
	"context"
	"errors"

	"blogapi/internal/models"
)

var (
	// ErrNotFound is returned when a lookup by key matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned by UserRepository.Create when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDs returns the users that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// PostRepository defines the interface for post data access.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetAll returns every post in insertion order.
	GetAll(ctx context.Context) ([]models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	// SearchByTitle returns posts whose title contains query, ignoring case.
	SearchByTitle(ctx context.Context, query string) ([]models.Post, error)
}

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// ListByPost returns the comments of a post in creation order.
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	// DeleteByPost removes every comment of a post and reports how many were removed.
	DeleteByPost(ctx context.Context, postID string) (int64, error)
}

// Store bundles the repositories of one backend.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Comments() CommentRepository
	// Atomic runs fn against a store whose writes commit together when the
	// backend supports transactions. Backends without transactions run fn
	// directly.
	Atomic(ctx context.Context, fn func(Store) error) error
	Close() error
}
