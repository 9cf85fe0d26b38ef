package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"blogapi/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store, used for local development and tests.
type MemoryStore struct {
	users    *MemoryUserRepository
	posts    *MemoryPostRepository
	comments *MemoryCommentRepository
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    NewMemoryUserRepository(),
		posts:    NewMemoryPostRepository(),
		comments: NewMemoryCommentRepository(),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Users() UserRepository       { return s.users }
func (s *MemoryStore) Posts() PostRepository       { return s.posts }
func (s *MemoryStore) Comments() CommentRepository { return s.comments }

// Atomic runs fn directly; writes are not rolled back on error.
func (s *MemoryStore) Atomic(_ context.Context, fn func(Store) error) error {
	return fn(s)
}

func (s *MemoryStore) Close() error { return nil }

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users   map[string]models.User
	byEmail map[string]string
	mu      sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

// Create adds a new user, rejecting a taken email.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return fmt.Errorf("create user %s: %w", user.Email, ErrDuplicateEmail)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.users[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

// GetByEmail returns a user by their email.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
	}
	user := r.users[id]
	return &user, nil
}

// GetByID returns a user by their ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return &user, nil
}

// GetByIDs returns the users that exist among ids.
func (r *MemoryUserRepository) GetByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if user, ok := r.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

// MemoryPostRepository is an in-memory implementation of PostRepository.
// order keeps insertion order for listing.
type MemoryPostRepository struct {
	posts map[string]models.Post
	order []string
	mu    sync.RWMutex
}

// NewMemoryPostRepository creates a new instance of MemoryPostRepository.
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		posts: make(map[string]models.Post),
	}
}

// Create adds a new post.
func (r *MemoryPostRepository) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	if _, exists := r.posts[post.ID]; !exists {
		r.order = append(r.order, post.ID)
	}
	r.posts[post.ID] = *post
	return nil
}

// GetAll returns all posts in insertion order.
func (r *MemoryPostRepository) GetAll(_ context.Context) ([]models.Post, error) {
	return r.filter(func(models.Post) bool { return true }), nil
}

// GetByID returns a post by its ID.
func (r *MemoryPostRepository) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post with ID %s: %w", id, ErrNotFound)
	}
	return &post, nil
}

// Update modifies the editable fields of an existing post.
func (r *MemoryPostRepository) Update(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[post.ID]
	if !ok {
		return fmt.Errorf("post with ID %s for update: %w", post.ID, ErrNotFound)
	}
	stored.Title = post.Title
	stored.Excerpt = post.Excerpt
	stored.Content = post.Content
	r.posts[post.ID] = stored
	return nil
}

// Delete removes a post by its ID.
func (r *MemoryPostRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("post with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.posts, id)
	for i, postID := range r.order {
		if postID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// SearchByTitle returns posts whose title contains query, ignoring case.
func (r *MemoryPostRepository) SearchByTitle(_ context.Context, query string) ([]models.Post, error) {
	needle := strings.ToLower(query)
	return r.filter(func(p models.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), needle)
	}), nil
}

func (r *MemoryPostRepository) filter(keep func(models.Post) bool) []models.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]models.Post, 0, len(r.order))
	for _, id := range r.order {
		if p := r.posts[id]; keep(p) {
			posts = append(posts, p)
		}
	}
	return posts
}

// MemoryCommentRepository is an in-memory implementation of CommentRepository.
type MemoryCommentRepository struct {
	comments []models.Comment
	mu       sync.RWMutex
}

// NewMemoryCommentRepository creates a new instance of MemoryCommentRepository.
func NewMemoryCommentRepository() *MemoryCommentRepository {
	return &MemoryCommentRepository{}
}

// Create adds a new comment.
func (r *MemoryCommentRepository) Create(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	r.comments = append(r.comments, *comment)
	return nil
}

// ListByPost returns the comments of a post in creation order.
func (r *MemoryCommentRepository) ListByPost(_ context.Context, postID string) ([]models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comments := []models.Comment{}
	for _, c := range r.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

// DeleteByPost removes every comment of a post.
func (r *MemoryCommentRepository) DeleteByPost(_ context.Context, postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.comments[:0]
	var removed int64
	for _, c := range r.comments {
		if c.PostID == postID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	r.comments = kept
	return removed, nil
}
