package services

import (
	"context"
	"fmt"

	"blogapi/internal/models"
	"blogapi/internal/repositories"

	"github.com/sirupsen/logrus"
)

// CommentService handles business logic for comments.
type CommentService struct {
	store  repositories.Store
	events EventPublisher
	log    logrus.FieldLogger
}

// NewCommentService creates a new CommentService. events may be nil.
func NewCommentService(store repositories.Store, events EventPublisher, log logrus.FieldLogger) *CommentService {
	return &CommentService{
		store:  store,
		events: events,
		log:    log,
	}
}

// Create adds a comment to an existing post.
func (s *CommentService) Create(ctx context.Context, postID, authorID, text string) (*models.Comment, error) {
	if _, err := s.store.Posts().GetByID(ctx, postID); err != nil {
		return nil, postLookupError(err)
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: authorID,
		Text:   text,
	}
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	publishEvent(s.events, s.log, EventCommentCreated, map[string]interface{}{
		"commentID": comment.ID,
		"postID":    postID,
		"userID":    authorID,
	})
	return comment, nil
}

// ListByPost returns the comments of a post in creation order, each with its
// author's name resolved.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]models.CommentView, error) {
	comments, err := s.store.Comments().ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if len(comments) == 0 {
		return []models.CommentView{}, nil
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	users, err := s.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve comment authors: %w", err)
	}
	authors := make(map[string]*models.User, len(users))
	for i := range users {
		authors[users[i].ID] = &users[i]
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, models.NewCommentView(c, authors[c.UserID]))
	}
	return views, nil
}
