package services

import (
	"context"
	"testing"
	"time"

	"github.com/dreamshare/dreamshare/internal/apperrors"
	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	alice := env.registerUser(t, "alice", "alice@example.com")
	bob := env.registerUser(t, "bob", "bob@example.com")
	public := env.createDream(t, alice.ID.String(), "open", true)
	private := env.createDream(t, alice.ID.String(), "closed", false)

	t.Run("comment on public dream", func(t *testing.T) {
		comment, err := env.comments.Add(ctx, bob.ID.String(), public.ID.String(), "what a dream")
		require.NoError(t, err)
		assert.Equal(t, "what a dream", comment.Content)
		assert.Equal(t, "bob", comment.User.Username)
	})

	t.Run("empty content rejected", func(t *testing.T) {
		_, err := env.comments.Add(ctx, bob.ID.String(), public.ID.String(), "   ")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
	})

	t.Run("owner may comment on own private dream", func(t *testing.T) {
		_, err := env.comments.Add(ctx, alice.ID.String(), private.ID.String(), "note to self")
		require.NoError(t, err)
	})

	t.Run("others cannot comment on private dream", func(t *testing.T) {
		_, err := env.comments.Add(ctx, bob.ID.String(), private.ID.String(), "let me in")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
	})

	t.Run("unknown dream", func(t *testing.T) {
		_, err := env.comments.Add(ctx, bob.ID.String(), "00000000-0000-0000-0000-000000000004", "hello")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	})
}

func TestListComments(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	alice := env.registerUser(t, "alice", "alice@example.com")
	bob := env.registerUser(t, "bob", "bob@example.com")
	dream := env.createDream(t, alice.ID.String(), "discussed", true)
	private := env.createDream(t, alice.ID.String(), "quiet", false)

	first, err := env.comments.Add(ctx, bob.ID.String(), dream.ID.String(), "first")
	require.NoError(t, err)
	// force distinct timestamps so the ordering is deterministic
	require.NoError(t, env.db.Model(&models.Comment{}).
		Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Minute)).Error)

	_, err = env.comments.Add(ctx, alice.ID.String(), dream.ID.String(), "second")
	require.NoError(t, err)

	t.Run("newest first by default", func(t *testing.T) {
		comments, err := env.comments.List(ctx, "", dream.ID.String(), false)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "second", comments[0].Content)
		assert.Equal(t, "first", comments[1].Content)
	})

	t.Run("oldest first on request", func(t *testing.T) {
		comments, err := env.comments.List(ctx, "", dream.ID.String(), true)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "first", comments[0].Content)
	})

	t.Run("private dream hides comments from others", func(t *testing.T) {
		_, err := env.comments.List(ctx, bob.ID.String(), private.ID.String(), false)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
	})

	t.Run("owner lists private dream comments", func(t *testing.T) {
		comments, err := env.comments.List(ctx, alice.ID.String(), private.ID.String(), false)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})
}
