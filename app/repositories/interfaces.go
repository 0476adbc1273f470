package repositories

import (
	"context"

	"folio/app/models"
)

// ListFilter narrows a post listing.
type ListFilter struct {
	PublishedOnly bool
}

// PostStore is the persistence port for the post collection. Every adapter
// is the sole owner of its backing store and must make IncrementViews,
// IncrementShares and AppendComment atomic per post.
type PostStore interface {
	// List returns posts newest-created first.
	List(ctx context.Context, filter ListFilter) ([]*models.Post, error)
	// Get returns a post without side effects.
	Get(ctx context.Context, id models.PostID) (*models.Post, error)
	// Create assigns the post an ID and stores it.
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, id models.PostID, patch *models.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, id models.PostID) error
	// IncrementViews adds one view and returns the post after the increment.
	IncrementViews(ctx context.Context, id models.PostID) (*models.Post, error)
	// IncrementShares adds one share and returns the new count.
	IncrementShares(ctx context.Context, id models.PostID) (int64, error)
	AppendComment(ctx context.Context, id models.PostID, comment *models.Comment) error
	// Import upserts posts as given, keeping their IDs and counters.
	Import(ctx context.Context, posts []*models.Post) error
	Stats(ctx context.Context) (models.Stats, error)
	// Kind names the backing store, e.g. "file".
	Kind() string
	Close() error
}

// Pinger is implemented by stores that talk to a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CollectionLocator is implemented by document stores to name where posts live.
type CollectionLocator interface {
	Database() string
	Collection() string
}
