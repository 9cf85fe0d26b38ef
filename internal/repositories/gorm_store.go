package repositories

import (
	"context"
	"fmt"

	"blogapi/internal/models"

	"gorm.io/gorm"
)

// GORMStore is a Store backed by a SQL database through GORM.
type GORMStore struct {
	db       *gorm.DB
	users    *GORMUserRepository
	posts    *GORMPostRepository
	comments *GORMCommentRepository
}

// NewGORMStore wraps db. Open db with gorm.Config{TranslateError: true}.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{
		db:       db,
		users:    NewGORMUserRepository(db),
		posts:    NewGORMPostRepository(db),
		comments: NewGORMCommentRepository(db),
	}
}

// AutoMigrate creates or updates the tables for every model.
func (s *GORMStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

var _ Store = (*GORMStore)(nil)

// DB returns the underlying connection.
func (s *GORMStore) DB() *gorm.DB { return s.db }

func (s *GORMStore) Users() UserRepository       { return s.users }
func (s *GORMStore) Posts() PostRepository       { return s.posts }
func (s *GORMStore) Comments() CommentRepository { return s.comments }

// Atomic runs fn inside a database transaction.
func (s *GORMStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}

// Close releases the underlying connection pool.
func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
