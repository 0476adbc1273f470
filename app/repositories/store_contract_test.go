package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"folio/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

func mustParseID(t *testing.T, raw string) models.PostID {
	t.Helper()
	id, err := models.ParseID(raw)
	require.NoError(t, err)
	return id
}

func newTestPost(title string, published bool, createdAt time.Time) *models.Post {
	post := models.NewPost(&models.PostPatch{
		Title:     strPtr(title),
		Excerpt:   strPtr(title + " excerpt"),
		Content:   strPtr("<p>" + title + "</p>"),
		Published: boolPtr(published),
	})
	post.CreatedAt = createdAt
	return post
}

// testPostStore exercises the behavior every PostStore adapter must share.
func testPostStore(t *testing.T, newStore func(t *testing.T) PostStore) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("create assigns id and get returns it", func(t *testing.T) {
		store := newStore(t)
		post := newTestPost("Hello", true, base)

		require.NoError(t, store.Create(ctx, post))
		require.NotEmpty(t, post.ID)

		got, err := store.Get(ctx, mustParseID(t, post.ID))
		require.NoError(t, err)
		assert.Equal(t, "Hello", got.Title)
		assert.True(t, got.Published)
		assert.Zero(t, got.Views)
		assert.NotNil(t, got.Comments)
	})

	t.Run("get unknown id", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(ctx, mustParseID(t, "does-not-exist"))
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = store.Get(ctx, mustParseID(t, "507f1f77bcf86cd799439011"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list orders newest first and filters drafts", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Create(ctx, newTestPost("oldest", true, base)))
		require.NoError(t, store.Create(ctx, newTestPost("draft", false, base.Add(time.Hour))))
		require.NoError(t, store.Create(ctx, newTestPost("newest", true, base.Add(2*time.Hour))))

		all, err := store.List(ctx, ListFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "newest", all[0].Title)
		assert.Equal(t, "draft", all[1].Title)
		assert.Equal(t, "oldest", all[2].Title)

		published, err := store.List(ctx, ListFilter{PublishedOnly: true})
		require.NoError(t, err)
		require.Len(t, published, 2)
		assert.Equal(t, "newest", published[0].Title)
		assert.Equal(t, "oldest", published[1].Title)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		store := newStore(t)
		posts, err := store.List(ctx, ListFilter{})
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})

	t.Run("update merges supplied fields only", func(t *testing.T) {
		store := newStore(t)
		post := newTestPost("Before", true, base)
		require.NoError(t, store.Create(ctx, post))
		id := mustParseID(t, post.ID)
		_, err := store.IncrementViews(ctx, id)
		require.NoError(t, err)

		updated, err := store.Update(ctx, id, &models.PostPatch{Title: strPtr("After")})
		require.NoError(t, err)
		assert.Equal(t, "After", updated.Title)
		assert.Equal(t, "Before excerpt", updated.Excerpt)
		assert.Equal(t, post.ID, updated.ID)
		assert.Equal(t, int64(1), updated.Views)
		assert.True(t, updated.CreatedAt.Equal(base))

		_, err = store.Update(ctx, mustParseID(t, "missing"), &models.PostPatch{Title: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete removes post", func(t *testing.T) {
		store := newStore(t)
		post := newTestPost("Doomed", true, base)
		require.NoError(t, store.Create(ctx, post))
		id := mustParseID(t, post.ID)

		require.NoError(t, store.Delete(ctx, id))
		_, err := store.Get(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, id), ErrNotFound)
	})

	t.Run("counters and comments", func(t *testing.T) {
		store := newStore(t)
		post := newTestPost("Counted", true, base)
		require.NoError(t, store.Create(ctx, post))
		id := mustParseID(t, post.ID)

		viewed, err := store.IncrementViews(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), viewed.Views)

		shares, err := store.IncrementShares(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), shares)

		comment := &models.Comment{ID: "c1", Name: "Ann", Content: "Nice", Approved: true, CreatedAt: base}
		require.NoError(t, store.AppendComment(ctx, id, comment))

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Views)
		assert.Equal(t, int64(1), got.Shares)
		assert.Equal(t, 1, got.CommentsCount)
		require.Len(t, got.Comments, 1)
		assert.Equal(t, "Nice", got.Comments[0].Content)

		_, err = store.IncrementShares(ctx, mustParseID(t, "missing"))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.AppendComment(ctx, mustParseID(t, "missing"), comment), ErrNotFound)
	})

	t.Run("concurrent shares are not lost", func(t *testing.T) {
		store := newStore(t)
		post := newTestPost("Popular", true, base)
		require.NoError(t, store.Create(ctx, post))
		id := mustParseID(t, post.ID)

		const workers = 20
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.IncrementShares(ctx, id)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(workers), got.Shares)
	})

	t.Run("import keeps ids and counters", func(t *testing.T) {
		store := newStore(t)
		imported := []*models.Post{
			{ID: "1700000000001", Title: "One", Published: true, CreatedAt: base, Views: 7, Shares: 2},
			{ID: "1700000000002", Title: "Two", CreatedAt: base.Add(time.Minute)},
		}
		require.NoError(t, store.Import(ctx, imported))

		got, err := store.Get(ctx, mustParseID(t, "1700000000001"))
		require.NoError(t, err)
		assert.Equal(t, "One", got.Title)
		assert.Equal(t, int64(7), got.Views)
		assert.Equal(t, int64(2), got.Shares)

		// Importing again upserts rather than duplicating.
		imported[0].Title = "One again"
		require.NoError(t, store.Import(ctx, imported[:1]))
		all, err := store.List(ctx, ListFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.Stats{TotalPosts: 2, PublishedPosts: 1}, stats)
	})
}
