package repositories

import (
	"context"

	"folio/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// maxTxnRetries bounds how often a conflicting read-modify-write is retried.
const maxTxnRetries = 128

// BadgerStore implements PostStore using BadgerDB. Posts are stored as
// JSON under "post:<id>".
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
}

// NewBadgerStore wraps an open Badger DB. The caller keeps ownership of db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadgerStore opens (or initializes) the Badger DB at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, unavailable(err, "open badger at "+path)
	}
	return &BadgerStore{db: db, ownsDB: true}, nil
}

func (s *BadgerStore) Kind() string { return "badger" }

// Close closes the DB if the store opened it.
func (s *BadgerStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

func postKey(id string) []byte {
	return []byte(PostKeyPrefix + id)
}

// List retrieves posts, newest first
func (s *BadgerStore) List(ctx context.Context, filter ListFilter) ([]*models.Post, error) {
	posts, err := s.all()
	if err != nil {
		return nil, err
	}
	posts = filterPosts(posts, filter)
	sortNewestFirst(posts)
	return posts, nil
}

// Get retrieves a post by ID
func (s *BadgerStore) Get(ctx context.Context, id models.PostID) (*models.Post, error) {
	var post *models.Post
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = getPost(txn, postKey(id.String()))
		return err
	})
	if err != nil {
		return nil, s.storeError(err, "get post")
	}
	return post, nil
}

// Create stores a new post under a fresh ObjectID-based id
func (s *BadgerStore) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = models.NewNativeID().String()
	}
	post.Normalize()

	data, err := marshalEntity(post)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(postKey(post.ID), data)
	})
	return s.storeError(err, "create post")
}

func (s *BadgerStore) Update(ctx context.Context, id models.PostID, patch *models.PostPatch) (*models.Post, error) {
	return s.modify(ctx, id, func(p *models.Post) {
		p.Apply(patch)
	})
}

// Delete deletes a post by ID
func (s *BadgerStore) Delete(ctx context.Context, id models.PostID) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key := postKey(id.String())

		// Verify post exists
		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return txn.Delete(key)
	})
	return s.storeError(err, "delete post")
}

func (s *BadgerStore) IncrementViews(ctx context.Context, id models.PostID) (*models.Post, error) {
	return s.modify(ctx, id, func(p *models.Post) {
		p.Views++
	})
}

func (s *BadgerStore) IncrementShares(ctx context.Context, id models.PostID) (int64, error) {
	post, err := s.modify(ctx, id, func(p *models.Post) {
		p.Shares++
	})
	if err != nil {
		return 0, err
	}
	return post.Shares, nil
}

func (s *BadgerStore) AppendComment(ctx context.Context, id models.PostID, comment *models.Comment) error {
	_, err := s.modify(ctx, id, func(p *models.Post) {
		p.AddComment(comment)
	})
	return err
}

func (s *BadgerStore) Import(ctx context.Context, posts []*models.Post) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, in := range posts {
		p := in.Clone().Normalize()
		if p.ID == "" {
			p.ID = models.NewNativeID().String()
		}
		data, err := marshalEntity(p)
		if err != nil {
			return err
		}
		if err := wb.Set(postKey(p.ID), data); err != nil {
			return s.storeError(err, "import post "+p.ID)
		}
	}
	return s.storeError(wb.Flush(), "import posts")
}

func (s *BadgerStore) Stats(ctx context.Context) (models.Stats, error) {
	posts, err := s.all()
	if err != nil {
		return models.Stats{}, err
	}
	return countPosts(posts), nil
}

// modify runs fn against the stored post inside a read-write transaction.
// Badger aborts the commit with ErrConflict when another transaction wrote
// the key after we read it; the whole step is then retried, so concurrent
// increments are never lost.
func (s *BadgerStore) modify(ctx context.Context, id models.PostID, fn func(p *models.Post)) (*models.Post, error) {
	key := postKey(id.String())
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var post *models.Post
		err := s.db.Update(func(txn *badger.Txn) error {
			var err error
			post, err = getPost(txn, key)
			if err != nil {
				return err
			}
			fn(post)

			data, err := marshalEntity(post)
			if err != nil {
				return err
			}
			return txn.Set(key, data)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, s.storeError(err, "update post")
		}
		return post, nil
	}
	return nil, errors.Errorf("update post %s: gave up after %d conflicting attempts", id, maxTxnRetries)
}

// all loads every post in key order.
func (s *BadgerStore) all() ([]*models.Post, error) {
	posts := []*models.Post{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(PostKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return err
			}
			posts = append(posts, post.Normalize())
		}
		return nil
	})
	if err != nil {
		return nil, s.storeError(err, "list posts")
	}
	return posts, nil
}

func getPost(txn *badger.Txn, key []byte) (*models.Post, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var post models.Post
	if err := item.Value(func(val []byte) error {
		return unmarshalEntity(val, &post)
	}); err != nil {
		return nil, err
	}
	return post.Normalize(), nil
}

// storeError passes ErrNotFound through and marks a closed DB as unavailable.
func (s *BadgerStore) storeError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, badger.ErrDBClosed):
		return unavailable(err, op)
	default:
		return errors.Wrap(err, op)
	}
}
