package notifications

import (
	"database/sql"
	"fmt"
	"io"
	"testing"

	"github.com/seliand/macaw/pkg/ntime"
	"github.com/seliand/macaw/pkg/storage/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) (Repository, *sql.DB) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	storage, err := sqlite.New(logger, ":memory:")
	require.NoError(t, err)
	storage.Connection.SetMaxOpenConns(1)
	t.Cleanup(storage.Close)
	return NewRepository(storage.Connection), storage.Connection
}

func addTestOwner(t *testing.T, connection *sql.DB) int64 {
	t.Helper()
	result, err := connection.Exec(
		"INSERT INTO users(username, password, display, avatar_color) VALUES(?, ?, ?, ?)",
		"alice", "irrelevant-hash", "alice", "#bbf7d0",
	)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

// add wraps Repository.Add in a short-lived transaction, as the producers do.
func add(t *testing.T, nr Repository, connection *sql.DB, userId int64, text string) {
	t.Helper()
	tx, err := connection.Begin()
	require.NoError(t, err)
	require.NoError(t, nr.Add(tx, userId, text, ntime.Now()))
	require.NoError(t, tx.Commit())
}

func TestRepository_GetRecent(t *testing.T) {

	t.Run("newest first, capped at fifty", func(t *testing.T) {
		nr, connection := newTestRepository(t)
		owner := addTestOwner(t, connection)

		for i := 0; i < 60; i++ {
			add(t, nr, connection, owner, fmt.Sprintf("event %d", i))
		}

		recent, err := nr.GetRecent(owner)
		require.NoError(t, err)
		require.Len(t, recent, 50)
		assert.Equal(t, "event 59", recent[0].Text)
		assert.Equal(t, "event 10", recent[49].Text)
	})

	t.Run("fetching marks the returned rows seen", func(t *testing.T) {
		nr, connection := newTestRepository(t)
		owner := addTestOwner(t, connection)

		add(t, nr, connection, owner, "first sighting")

		recent, err := nr.GetRecent(owner)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.False(t, recent[0].Seen)

		recent, err = nr.GetRecent(owner)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.True(t, recent[0].Seen)
	})

	t.Run("only the returned rows are flagged seen", func(t *testing.T) {
		nr, connection := newTestRepository(t)
		owner := addTestOwner(t, connection)

		for i := 0; i < 60; i++ {
			add(t, nr, connection, owner, fmt.Sprintf("event %d", i))
		}

		recent, err := nr.GetRecent(owner)
		require.NoError(t, err)
		require.Len(t, recent, 50)

		var seen int
		require.NoError(t, connection.QueryRow(
			"SELECT count(*) FROM notifications WHERE user_id = ? AND seen = TRUE", owner,
		).Scan(&seen))
		assert.Equal(t, 50, seen)
	})

	t.Run("owners never see each other's notifications", func(t *testing.T) {
		nr, connection := newTestRepository(t)
		owner := addTestOwner(t, connection)

		result, err := connection.Exec(
			"INSERT INTO users(username, password, display, avatar_color) VALUES(?, ?, ?, ?)",
			"bob", "irrelevant-hash", "bob", "#60a5fa",
		)
		require.NoError(t, err)
		other, err := result.LastInsertId()
		require.NoError(t, err)

		add(t, nr, connection, owner, "yours")
		add(t, nr, connection, other, "not yours")

		recent, err := nr.GetRecent(owner)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, "yours", recent[0].Text)
	})
}
