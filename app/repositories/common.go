package repositories

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"folio/app/models"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when an id does not resolve to a post.
	ErrNotFound = errors.New("post not found")
	// ErrUnavailable wraps failures to reach or read the backing store.
	ErrUnavailable = errors.New("store unavailable")
)

const (
	// PostKeyPrefix prefixes post keys in key-value stores.
	PostKeyPrefix = "post:"
)

// unavailable marks err, raised by op, as a store availability failure.
func unavailable(err error, op string) error {
	return errors.Wrapf(ErrUnavailable, "%s: %v", op, err)
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal entity")
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return errors.Wrap(err, "failed to unmarshal entity")
	}
	return nil
}

// sortNewestFirst orders posts by creation time, newest first.
func sortNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// filterPosts keeps the posts matching filter.
func filterPosts(posts []*models.Post, filter ListFilter) []*models.Post {
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if filter.PublishedOnly && !p.Published {
			continue
		}
		out = append(out, p)
	}
	return out
}

// countPosts computes collection stats from a full listing.
func countPosts(posts []*models.Post) models.Stats {
	stats := models.Stats{TotalPosts: int64(len(posts))}
	for _, p := range posts {
		if p.Published {
			stats.PublishedPosts++
		}
	}
	return stats
}

// WriteFileAtomic writes data to a temp file next to path, syncs it and
// renames it over path. A failure leaves the previous file untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
