package services

import (
	"context"

	"folio/app/models"
	"folio/app/repositories"
)

// PostService handles business logic for blog posts
type PostService struct {
	store repositories.PostStore
}

// NewPostService creates a new PostService
func NewPostService(store repositories.PostStore) *PostService {
	return &PostService{store: store}
}

// ListPosts returns published posts newest first, or every post when
// includeDrafts is set.
func (s *PostService) ListPosts(ctx context.Context, includeDrafts bool) ([]*models.Post, error) {
	return s.store.List(ctx, repositories.ListFilter{PublishedOnly: !includeDrafts})
}

// GetPost retrieves a post and counts the read as one view.
func (s *PostService) GetPost(ctx context.Context, rawID string) (*models.Post, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.store.IncrementViews(ctx, id)
}

// CreatePost stores a new post built from the client fields
func (s *PostService) CreatePost(ctx context.Context, patch *models.PostPatch) (*models.Post, error) {
	post := models.NewPost(patch)
	if err := s.store.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost merges the supplied fields into an existing post
func (s *PostService) UpdatePost(ctx context.Context, rawID string, patch *models.PostPatch) (*models.Post, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.store.Update(ctx, id, patch)
}

// DeletePost deletes a post together with its comments
func (s *PostService) DeletePost(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// SharePost records one share and returns the new total.
func (s *PostService) SharePost(ctx context.Context, rawID string) (int64, error) {
	id, err := parseID(rawID)
	if err != nil {
		return 0, err
	}
	return s.store.IncrementShares(ctx, id)
}

func (s *PostService) Stats(ctx context.Context) (models.Stats, error) {
	return s.store.Stats(ctx)
}
