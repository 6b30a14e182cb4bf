package users

import (
	"database/sql"
	"io"
	"testing"

	"github.com/seliand/macaw/pkg/notifications"
	"github.com/seliand/macaw/pkg/storage/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB builds a fresh in-memory database from the real schema; a single
// connection keeps the pool from silently opening empty ":memory:" databases.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	storage, err := sqlite.New(logger, ":memory:")
	require.NoError(t, err)
	storage.Connection.SetMaxOpenConns(1)
	t.Cleanup(storage.Close)
	return storage.Connection
}

func newTestRepository(t *testing.T) (UserRepository, notifications.Repository) {
	t.Helper()
	connection := newTestDB(t)
	nr := notifications.NewRepository(connection)
	return NewRepository(connection, nr), nr
}

func TestUserRepository_Register(t *testing.T) {

	t.Run("successful registration returns public fields", func(t *testing.T) {
		ur, _ := newTestRepository(t)

		user, err := ur.Register(RegisterData{Username: "alice", Password: "pw1", Display: "Alice"})
		require.NoError(t, err)
		assert.NotZero(t, user.Id)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "Alice", user.Display)
		assert.Contains(t, avatarPalette, user.AvatarColor)
	})

	t.Run("display defaults to the username", func(t *testing.T) {
		ur, _ := newTestRepository(t)

		user, err := ur.Register(RegisterData{Username: "bob", Password: "pw2"})
		require.NoError(t, err)
		assert.Equal(t, "bob", user.Display)
	})

	t.Run("duplicate usernames conflict regardless of password", func(t *testing.T) {
		ur, _ := newTestRepository(t)

		_, err := ur.Register(RegisterData{Username: "alice", Password: "pw1"})
		require.NoError(t, err)

		_, err = ur.Register(RegisterData{Username: "alice", Password: "completely different"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})
}

func TestUserRepository_Authenticate(t *testing.T) {
	ur, _ := newTestRepository(t)

	registered, err := ur.Register(RegisterData{Username: "alice", Password: "pw1"})
	require.NoError(t, err)

	t.Run("matching credentials yield the user", func(t *testing.T) {
		user, err := ur.Authenticate(LoginData{Username: "alice", Password: "pw1"})
		require.NoError(t, err)
		assert.Equal(t, registered.Id, user.Id)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := ur.Authenticate(LoginData{Username: "nobody", Password: "pw1"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := ur.Authenticate(LoginData{Username: "alice", Password: "pw2"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserRepository_ToggleFollow(t *testing.T) {
	ur, nr := newTestRepository(t)

	alice, err := ur.Register(RegisterData{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	bob, err := ur.Register(RegisterData{Username: "bob", Password: "pw2"})
	require.NoError(t, err)

	t.Run("unknown target", func(t *testing.T) {
		_, err := ur.ToggleFollow(alice, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("repeated toggles alternate the edge", func(t *testing.T) {
		following, err := ur.ToggleFollow(alice, "bob")
		require.NoError(t, err)
		assert.True(t, following)
		assert.True(t, ur.IsFollowing(alice.Id, bob.Id))

		following, err = ur.ToggleFollow(alice, "bob")
		require.NoError(t, err)
		assert.False(t, following)
		assert.False(t, ur.IsFollowing(alice.Id, bob.Id))
	})

	t.Run("only the create branch notifies the target", func(t *testing.T) {
		_, err := ur.ToggleFollow(alice, "bob") // create
		require.NoError(t, err)
		_, err = ur.ToggleFollow(alice, "bob") // remove
		require.NoError(t, err)

		recent, err := nr.GetRecent(bob.Id)
		require.NoError(t, err)
		require.NotEmpty(t, recent)
		assert.Equal(t, "alice followed you", recent[0].Text)

		// two toggle cycles so far: two creations, two removals
		assert.Len(t, recent, 2)
	})
}

func TestUserRepository_GetProfile(t *testing.T) {
	ur, _ := newTestRepository(t)

	alice, err := ur.Register(RegisterData{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	bob, err := ur.Register(RegisterData{Username: "bob", Password: "pw2"})
	require.NoError(t, err)
	carol, err := ur.Register(RegisterData{Username: "carol", Password: "pw3"})
	require.NoError(t, err)

	_, err = ur.ToggleFollow(alice, "bob")
	require.NoError(t, err)
	_, err = ur.ToggleFollow(carol, "bob")
	require.NoError(t, err)

	profile, err := ur.GetProfile(bob.Id)
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.Username)
	assert.Equal(t, 0, profile.FollowingCount)
	assert.Equal(t, 2, profile.FollowersCount)

	profile, err = ur.GetProfile(alice.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.FollowingCount)
	assert.Equal(t, 0, profile.FollowersCount)
}

func TestUserRepository_GetAll(t *testing.T) {
	ur, _ := newTestRepository(t)

	for _, username := range []string{"carol", "alice", "bob"} {
		_, err := ur.Register(RegisterData{Username: username, Password: "pw"})
		require.NoError(t, err)
	}

	listings, err := ur.GetAll()
	require.NoError(t, err)
	require.Len(t, listings, 3)
	assert.Equal(t, "alice", listings[0].Username)
	assert.Equal(t, "bob", listings[1].Username)
	assert.Equal(t, "carol", listings[2].Username)
}

func TestUserRepository_UpdateDisplay(t *testing.T) {
	ur, _ := newTestRepository(t)

	alice, err := ur.Register(RegisterData{Username: "alice", Password: "pw1"})
	require.NoError(t, err)

	require.NoError(t, ur.UpdateDisplay(alice.Id, "Alice in Wonderland"))

	profile, err := ur.GetProfile(alice.Id)
	require.NoError(t, err)
	assert.Equal(t, "Alice in Wonderland", profile.Display)
}
