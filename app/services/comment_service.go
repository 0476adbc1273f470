package services

import (
	"context"

	"folio/app/models"
	"folio/app/repositories"
)

// CommentPolicy decides how submitted comments are admitted.
type CommentPolicy struct {
	// AutoApprove publishes comments immediately. Otherwise they wait for
	// moderation and stay hidden from readers.
	AutoApprove bool
	// StrictValidation rejects empty content, malformed email addresses
	// and oversized fields. Without it any comment body is stored.
	StrictValidation bool
}

// CommentService handles business logic for comments
type CommentService struct {
	store  repositories.PostStore
	policy CommentPolicy
}

// NewCommentService creates a new CommentService
func NewCommentService(store repositories.PostStore, policy CommentPolicy) *CommentService {
	return &CommentService{
		store:  store,
		policy: policy,
	}
}

// AddComment validates the input and appends a comment to the post
func (s *CommentService) AddComment(ctx context.Context, rawID string, in *models.CommentInput) (*models.Comment, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	if s.policy.StrictValidation {
		if err := in.Validate(); err != nil {
			return nil, err
		}
	} else {
		in.Normalize()
	}

	comment := models.NewComment(in, s.policy.AutoApprove)
	if err := s.store.AppendComment(ctx, id, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns the approved comments of a post, oldest first.
// Reading comments does not count as a view.
func (s *CommentService) ListComments(ctx context.Context, rawID string) ([]*models.Comment, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	post, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return post.ApprovedComments(), nil
}
