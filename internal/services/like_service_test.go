package services

import (
	"context"
	"testing"

	"github.com/dreamshare/dreamshare/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeToggle(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	alice := env.registerUser(t, "alice", "alice@example.com")
	bob := env.registerUser(t, "bob", "bob@example.com")
	dream := env.createDream(t, alice.ID.String(), "likable", true)

	t.Run("first toggle likes", func(t *testing.T) {
		liked, count, err := env.likes.Toggle(ctx, bob.ID.String(), dream.ID.String())
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, int64(1), count)
	})

	t.Run("second toggle unlikes", func(t *testing.T) {
		liked, count, err := env.likes.Toggle(ctx, bob.ID.String(), dream.ID.String())
		require.NoError(t, err)
		assert.False(t, liked)
		assert.Equal(t, int64(0), count)
	})

	t.Run("third toggle likes again", func(t *testing.T) {
		liked, count, err := env.likes.Toggle(ctx, bob.ID.String(), dream.ID.String())
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, int64(1), count)
	})

	t.Run("independent users count separately", func(t *testing.T) {
		liked, count, err := env.likes.Toggle(ctx, alice.ID.String(), dream.ID.String())
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, int64(2), count)
	})

	t.Run("unknown dream", func(t *testing.T) {
		_, _, err := env.likes.Toggle(ctx, bob.ID.String(), "00000000-0000-0000-0000-000000000003")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	})
}

func TestLikeCountsInResponses(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	alice := env.registerUser(t, "alice", "alice@example.com")
	bob := env.registerUser(t, "bob", "bob@example.com")
	dream := env.createDream(t, alice.ID.String(), "counted", true)

	_, _, err := env.likes.Toggle(ctx, bob.ID.String(), dream.ID.String())
	require.NoError(t, err)

	got, err := env.dreams.Get(ctx, "", dream.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Counts.Likes)
}
