package services

import (
	"context"
	"testing"

	"folio/app/models"
	"folio/app/repositories"
	"folio/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()
	posts := NewPostService(store)
	service := NewCommentService(store, CommentPolicy{AutoApprove: true, StrictValidation: true})

	post, err := posts.CreatePost(ctx, &models.PostPatch{Title: strPtr("Commented"), Published: boolPtr(true)})
	require.NoError(t, err)

	t.Run("add comment", func(t *testing.T) {
		comment, err := service.AddComment(ctx, post.ID, &models.CommentInput{
			Name:    "  Ann ",
			Content: "Great post",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, comment.ID)
		assert.Equal(t, "Ann", comment.Name)
		assert.True(t, comment.Approved)
		assert.False(t, comment.CreatedAt.IsZero())
	})

	t.Run("list comments does not count a view", func(t *testing.T) {
		comments, err := service.ListComments(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, "Great post", comments[0].Content)

		stored, err := store.Get(ctx, mustParse(t, post.ID))
		require.NoError(t, err)
		assert.Zero(t, stored.Views)
		assert.Equal(t, 1, stored.CommentsCount)
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name  string
			input models.CommentInput
		}{
			{"empty content", models.CommentInput{Name: "Ann"}},
			{"bad email", models.CommentInput{Email: "nope", Content: "hi"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := service.AddComment(ctx, post.ID, &tt.input)
				var verr *models.ValidationError
				assert.ErrorAs(t, err, &verr)
			})
		}
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := service.AddComment(ctx, "missing", &models.CommentInput{Content: "hi"})
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		_, err = service.ListComments(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestCommentServiceModeration(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()
	service := NewCommentService(store, CommentPolicy{})

	post, err := NewPostService(store).CreatePost(ctx, &models.PostPatch{})
	require.NoError(t, err)

	comment, err := service.AddComment(ctx, post.ID, &models.CommentInput{Content: "pending"})
	require.NoError(t, err)
	assert.False(t, comment.Approved)

	comments, err := service.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments, "unapproved comments stay hidden")
}

func TestCommentServiceLenientValidation(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()
	service := NewCommentService(store, CommentPolicy{AutoApprove: true})

	post, err := NewPostService(store).CreatePost(ctx, &models.PostPatch{})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input models.CommentInput
	}{
		{"empty content", models.CommentInput{Name: "Ann"}},
		{"free-form email", models.CommentInput{Name: " Bob ", Email: "bob", Content: "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comment, err := service.AddComment(ctx, post.ID, &tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.input.Email, comment.Email)
			assert.True(t, comment.Approved)
		})
	}

	stored, err := store.Get(ctx, mustParse(t, post.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CommentsCount)
	assert.Equal(t, "Bob", stored.Comments[1].Name)
}

func mustParse(t *testing.T, raw string) models.PostID {
	t.Helper()
	id, err := models.ParseID(raw)
	require.NoError(t, err)
	return id
}
