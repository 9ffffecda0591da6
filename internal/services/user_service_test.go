package services

import (
	"context"
	"testing"

	"github.com/dreamshare/dreamshare/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		user, err := env.users.Register(ctx, &RegisterRequest{
			Username: "alice",
			Email:    "Alice@Example.com",
			Password: "supersecret123",
		})
		require.NoError(t, err)

		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "alice", user.DisplayName)
		assert.NotEqual(t, "supersecret123", user.Password)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		_, err := env.users.Register(ctx, &RegisterRequest{
			Username: "alice",
			Email:    "other@example.com",
			Password: "supersecret123",
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := env.users.Register(ctx, &RegisterRequest{
			Username: "bob",
			Email:    "alice@example.com",
			Password: "supersecret123",
		})
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	})

	t.Run("keeps explicit display name", func(t *testing.T) {
		user, err := env.users.Register(ctx, &RegisterRequest{
			Username:    "carol",
			Email:       "carol@example.com",
			Password:    "supersecret123",
			DisplayName: "Carol D.",
		})
		require.NoError(t, err)
		assert.Equal(t, "Carol D.", user.DisplayName)
	})
}

func TestAuthenticate(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	env.registerUser(t, "alice", "alice@example.com")

	t.Run("valid credentials", func(t *testing.T) {
		user, err := env.users.Authenticate(ctx, "alice@example.com", "correct-horse-battery")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.users.Authenticate(ctx, "alice@example.com", "wrong")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidCredentials, apperrors.CodeOf(err))
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		_, err := env.users.Authenticate(ctx, "nobody@example.com", "whatever")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidCredentials, apperrors.CodeOf(err))
	})
}

func TestProfile(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	alice := env.registerUser(t, "alice", "alice@example.com")
	bob := env.registerUser(t, "bob", "bob@example.com")

	env.createDream(t, alice.ID.String(), "first", true)
	env.createDream(t, alice.ID.String(), "second", false)

	_, err := env.follows.Toggle(ctx, bob.ID.String(), alice.Username)
	require.NoError(t, err)

	t.Run("by username", func(t *testing.T) {
		profile, err := env.users.Profile(ctx, "alice")
		require.NoError(t, err)

		assert.Equal(t, alice.ID, profile.ID)
		assert.Equal(t, int64(2), profile.DreamCount)
		assert.Equal(t, int64(1), profile.FollowerCount)
		assert.Equal(t, int64(0), profile.FollowingCount)
		assert.Empty(t, profile.Email)
	})

	t.Run("by id", func(t *testing.T) {
		profile, err := env.users.Profile(ctx, alice.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "alice", profile.Username)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.users.Profile(ctx, "nobody")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	})

	t.Run("me includes email", func(t *testing.T) {
		profile, err := env.users.Me(ctx, alice.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", profile.Email)
	})
}

func TestUpdateProfile(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice", "alice@example.com")

	updated, err := env.users.UpdateProfile(ctx, alice.ID.String(), &UpdateProfileRequest{
		DisplayName: "Alice in Dreamland",
		Bio:         "lucid dreamer",
		AvatarURL:   "https://example.com/alice.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice in Dreamland", updated.DisplayName)
	assert.Equal(t, "lucid dreamer", updated.Bio)
	assert.Equal(t, "alice", updated.Username)

	// overwrite semantics: empty fields clear
	cleared, err := env.users.UpdateProfile(ctx, alice.ID.String(), &UpdateProfileRequest{})
	require.NoError(t, err)
	assert.Empty(t, cleared.Bio)
}
