package mock

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"folio/app/models"
	"folio/app/repositories"
)

var _ repositories.PostStore = (*Store)(nil)

// Store is an in-memory PostStore for tests. Setting Err makes every
// operation fail with it.
type Store struct {
	posts  map[string]*models.Post
	order  []string
	nextID int
	mutex  sync.RWMutex

	Err error
}

func NewStore() *Store {
	return &Store{
		posts:  make(map[string]*models.Post),
		nextID: 1,
	}
}

func (m *Store) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.posts = make(map[string]*models.Post)
	m.order = nil
	m.nextID = 1
	m.Err = nil
}

func (m *Store) Kind() string { return "memory" }

func (m *Store) Close() error { return nil }

func (m *Store) List(ctx context.Context, filter repositories.ListFilter) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	posts := []*models.Post{}
	// Newest first: later inserts win ties on createdAt.
	for i := len(m.order) - 1; i >= 0; i-- {
		post := m.posts[m.order[i]]
		if filter.PublishedOnly && !post.Published {
			continue
		}
		posts = append(posts, post.Clone())
	}
	sortByCreatedDesc(posts)
	return posts, nil
}

func (m *Store) Get(ctx context.Context, id models.PostID) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	post, exists := m.posts[id.String()]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return post.Clone(), nil
}

func (m *Store) Create(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if post.ID == "" {
		post.ID = strconv.Itoa(m.nextID)
		m.nextID++
	}
	m.put(post.Clone().Normalize())
	return nil
}

func (m *Store) Update(ctx context.Context, id models.PostID, patch *models.PostPatch) (*models.Post, error) {
	return m.modify(id, func(p *models.Post) { p.Apply(patch) })
}

func (m *Store) Delete(ctx context.Context, id models.PostID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	key := id.String()
	if _, exists := m.posts[key]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Store) IncrementViews(ctx context.Context, id models.PostID) (*models.Post, error) {
	return m.modify(id, func(p *models.Post) { p.Views++ })
}

func (m *Store) IncrementShares(ctx context.Context, id models.PostID) (int64, error) {
	post, err := m.modify(id, func(p *models.Post) { p.Shares++ })
	if err != nil {
		return 0, err
	}
	return post.Shares, nil
}

func (m *Store) AppendComment(ctx context.Context, id models.PostID, comment *models.Comment) error {
	_, err := m.modify(id, func(p *models.Post) { p.AddComment(comment) })
	return err
}

func (m *Store) Import(ctx context.Context, posts []*models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	for _, p := range posts {
		cp := p.Clone().Normalize()
		if cp.ID == "" {
			cp.ID = strconv.Itoa(m.nextID)
			m.nextID++
		}
		m.put(cp)
	}
	return nil
}

func (m *Store) Stats(ctx context.Context) (models.Stats, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return models.Stats{}, m.Err
	}
	stats := models.Stats{TotalPosts: int64(len(m.posts))}
	for _, p := range m.posts {
		if p.Published {
			stats.PublishedPosts++
		}
	}
	return stats, nil
}

func (m *Store) put(post *models.Post) {
	if _, exists := m.posts[post.ID]; !exists {
		m.order = append(m.order, post.ID)
	}
	m.posts[post.ID] = post
}

func (m *Store) modify(id models.PostID, fn func(p *models.Post)) (*models.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	post, exists := m.posts[id.String()]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	fn(post)
	return post.Clone(), nil
}

func sortByCreatedDesc(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}
