package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blogapi/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

// NewGORMPostRepository creates a new instance of GORMPostRepository.
func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{
		db: db,
	}
}

// Create creates a new post in the database.
func (r *GORMPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetAll retrieves all posts from the database, oldest first.
func (r *GORMPostRepository) GetAll(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all posts: %w", err)
	}
	return posts, nil
}

// GetByID retrieves a single post by its ID from the database.
func (r *GORMPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by ID %s: %w", id, err)
	}
	return &post, nil
}

// Update writes the editable fields of an existing post. CreatedAt and
// UserID are never changed.
func (r *GORMPostRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"title":   post.Title,
			"excerpt": post.Excerpt,
			"content": post.Content,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Updates reports no error for a missing row, so check RowsAffected.
		return fmt.Errorf("post with ID %s for update: %w", post.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a post by its ID from the database.
func (r *GORMPostRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// SearchByTitle matches query as a literal, case-insensitive substring.
func (r *GORMPostRepository) SearchByTitle(ctx context.Context, query string) ([]models.Post, error) {
	posts := []models.Post{}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	err := r.db.WithContext(ctx).
		Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern).
		Order("created_at ASC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search posts by title %q: %w", query, err)
	}
	return posts, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
