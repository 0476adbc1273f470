package backup

import (
	"context"
	"encoding/json"
	"io"

	"folio/app/models"
	"folio/app/repositories"

	"github.com/pkg/errors"
)

// Snapshot serializes every post, drafts included, in the same pretty JSON
// array format the file store keeps on disk.
func Snapshot(ctx context.Context, store repositories.PostStore) ([]byte, error) {
	posts, err := store.List(ctx, repositories.ListFilter{})
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode snapshot")
	}
	return data, nil
}

// ReadSnapshot decodes a snapshot written by Snapshot, or any JSON array of
// posts such as a legacy posts.json.
func ReadSnapshot(r io.Reader) ([]*models.Post, error) {
	var posts []*models.Post
	if err := json.NewDecoder(r).Decode(&posts); err != nil {
		return nil, errors.Wrap(err, "failed to decode snapshot")
	}
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p != nil {
			out = append(out, p.Normalize())
		}
	}
	return out, nil
}
