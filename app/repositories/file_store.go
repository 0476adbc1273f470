package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strconv"
	"sync"
	"time"

	"folio/app/models"

	"github.com/pkg/errors"
)

// FileStore keeps the whole collection as one JSON array on disk. Every
// operation reads the file, mutates the slice and writes the file back
// while holding mu, so updates within the process never interleave.
type FileStore struct {
	mu         sync.Mutex
	path       string
	backupPath string
	now        func() time.Time
}

// NewFileStore opens the JSON file at path. backupPath, when set, is read
// if the primary file is unreadable; the backup worker keeps it current.
func NewFileStore(path, backupPath string) (*FileStore, error) {
	s := &FileStore{
		path:       path,
		backupPath: backupPath,
		now:        time.Now,
	}
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Kind() string { return "file" }

func (s *FileStore) Close() error { return nil }

// Path is the location of the primary data file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) List(ctx context.Context, filter ListFilter) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return nil, err
	}
	posts = filterPosts(posts, filter)
	sortNewestFirst(posts)
	return posts, nil
}

func (s *FileStore) Get(ctx context.Context, id models.PostID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return posts[i], nil
}

func (s *FileStore) Create(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return err
	}
	if post.ID == "" {
		post.ID = s.nextID(posts)
	}
	post.Normalize()

	// Newest first, matching the order listings are served in.
	posts = append([]*models.Post{post.Clone()}, posts...)
	return s.save(posts)
}

func (s *FileStore) Update(ctx context.Context, id models.PostID, patch *models.PostPatch) (*models.Post, error) {
	return s.modify(id, func(p *models.Post) error {
		p.Apply(patch)
		return nil
	})
}

func (s *FileStore) Delete(ctx context.Context, id models.PostID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return ErrNotFound
	}
	posts = append(posts[:i], posts[i+1:]...)
	return s.save(posts)
}

func (s *FileStore) IncrementViews(ctx context.Context, id models.PostID) (*models.Post, error) {
	return s.modify(id, func(p *models.Post) error {
		p.Views++
		return nil
	})
}

func (s *FileStore) IncrementShares(ctx context.Context, id models.PostID) (int64, error) {
	post, err := s.modify(id, func(p *models.Post) error {
		p.Shares++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return post.Shares, nil
}

func (s *FileStore) AppendComment(ctx context.Context, id models.PostID, comment *models.Comment) error {
	_, err := s.modify(id, func(p *models.Post) error {
		p.AddComment(comment)
		return nil
	})
	return err
}

func (s *FileStore) Import(ctx context.Context, incoming []*models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return err
	}
	index := make(map[string]int, len(posts))
	for i, p := range posts {
		index[p.ID] = i
	}
	for _, in := range incoming {
		p := in.Clone().Normalize()
		if p.ID == "" {
			p.ID = s.nextID(posts)
		}
		if i, ok := index[p.ID]; ok {
			posts[i] = p
			continue
		}
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}
	sortNewestFirst(posts)
	return s.save(posts)
}

func (s *FileStore) Stats(ctx context.Context) (models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return models.Stats{}, err
	}
	return countPosts(posts), nil
}

// modify applies fn to the post with the given id and persists the result.
func (s *FileStore) modify(id models.PostID, fn func(p *models.Post) error) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	if err := fn(posts[i]); err != nil {
		return nil, err
	}
	if err := s.save(posts); err != nil {
		return nil, err
	}
	return posts[i], nil
}

// nextID returns a millisecond timestamp id greater than every numeric id in use.
func (s *FileStore) nextID(posts []*models.Post) string {
	next := s.now().UnixMilli()
	for _, p := range posts {
		if n, err := strconv.ParseInt(p.ID, 10, 64); err == nil && n >= next {
			next = n + 1
		}
	}
	return strconv.FormatInt(next, 10)
}

func (s *FileStore) load() ([]*models.Post, error) {
	posts, err := readPostsFile(s.path)
	if err == nil {
		return posts, nil
	}
	if s.backupPath != "" {
		if backup, berr := readPostsFile(s.backupPath); berr == nil {
			return backup, nil
		}
	}
	return nil, unavailable(err, "read "+s.path)
}

func (s *FileStore) save(posts []*models.Post) error {
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode posts")
	}
	if err := WriteFileAtomic(s.path, data, 0644); err != nil {
		return unavailable(err, "write "+s.path)
	}
	return nil
}

// readPostsFile decodes a JSON array of posts. A missing or empty file is an
// empty collection.
func readPostsFile(path string) ([]*models.Post, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []*models.Post{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*models.Post{}, nil
	}
	var posts []*models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, err
	}
	out := posts[:0]
	for _, p := range posts {
		if p != nil {
			out = append(out, p.Normalize())
		}
	}
	return out, nil
}

func indexOf(posts []*models.Post, id models.PostID) int {
	key := id.String()
	for i, p := range posts {
		if p.ID == key {
			return i
		}
	}
	return -1
}
