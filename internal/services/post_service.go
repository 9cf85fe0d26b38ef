package services

import (
	"context"
	"errors"
	"fmt"

	"blogapi/internal/apperrors"
	"blogapi/internal/models"
	"blogapi/internal/repositories"

	"github.com/sirupsen/logrus"
)

// PostInput is the data needed to create a post.
type PostInput struct {
	Title   string
	Excerpt string
	Content string
}

// PostUpdate holds the fields to change on a post. Nil fields are kept.
type PostUpdate struct {
	Title   *string
	Excerpt *string
	Content *string
}

// PostService handles business logic for posts.
type PostService struct {
	store  repositories.Store
	events EventPublisher
	log    logrus.FieldLogger
}

// NewPostService creates a new PostService. events may be nil.
func NewPostService(store repositories.Store, events EventPublisher, log logrus.FieldLogger) *PostService {
	return &PostService{
		store:  store,
		events: events,
		log:    log,
	}
}

// Create validates and stores a post written by authorID. The author is not
// checked for existence.
func (s *PostService) Create(ctx context.Context, authorID string, in PostInput) (*models.Post, error) {
	post := &models.Post{
		Title:   in.Title,
		Excerpt: in.Excerpt,
		Content: in.Content,
		UserID:  authorID,
	}
	post.Normalize()
	if post.Title == "" || post.Excerpt == "" || post.Content == "" || post.UserID == "" {
		return nil, validationError("All fields are required", post.Validate())
	}
	if err := post.Validate(); err != nil {
		return nil, validationError("Validation failed", err)
	}

	if err := s.store.Posts().Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.log.WithFields(logrus.Fields{"post_id": post.ID, "user_id": authorID}).Info("post created")
	publishEvent(s.events, s.log, EventPostCreated, map[string]interface{}{
		"postID": post.ID,
		"userID": authorID,
	})
	return post, nil
}

// GetAll returns every post in insertion order.
func (s *PostService) GetAll(ctx context.Context) ([]models.Post, error) {
	posts, err := s.store.Posts().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}
	return posts, nil
}

// GetByID returns a single post.
func (s *PostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.store.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, postLookupError(err)
	}
	return post, nil
}

// Update applies the given fields, revalidates the post and returns it as
// stored after the update.
func (s *PostService) Update(ctx context.Context, id string, in PostUpdate) (*models.Post, error) {
	post, err := s.store.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, postLookupError(err)
	}

	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Excerpt != nil {
		post.Excerpt = *in.Excerpt
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	post.Normalize()
	if err := post.Validate(); err != nil {
		return nil, validationError("Validation failed", err)
	}

	if err := s.store.Posts().Update(ctx, post); err != nil {
		return nil, postLookupError(err)
	}

	updated, err := s.store.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, postLookupError(err)
	}
	publishEvent(s.events, s.log, EventPostUpdated, map[string]interface{}{"postID": id})
	return updated, nil
}

// Delete removes a post and every comment on it.
func (s *PostService) Delete(ctx context.Context, id string) error {
	var removed int64
	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		if err := tx.Posts().Delete(ctx, id); err != nil {
			return err
		}
		n, err := tx.Comments().DeleteByPost(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		removed = n
		return nil
	})
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			s.log.WithError(err).WithField("post_id", id).Error("post deletion failed")
		}
		return postLookupError(err)
	}

	s.log.WithFields(logrus.Fields{"post_id": id, "comments_removed": removed}).Info("post deleted")
	publishEvent(s.events, s.log, EventPostDeleted, map[string]interface{}{
		"postID":          id,
		"commentsRemoved": removed,
	})
	return nil
}

// Search returns posts whose title contains title, ignoring case. An empty
// title matches every post.
func (s *PostService) Search(ctx context.Context, title string) ([]models.Post, error) {
	posts, err := s.store.Posts().SearchByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return posts, nil
}

func postLookupError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("Post not found")
	}
	return err
}
