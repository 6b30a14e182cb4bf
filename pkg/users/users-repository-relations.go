package users

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/seliand/macaw/pkg/auth"
	"github.com/seliand/macaw/pkg/ntime"
)

func (ur *userRepository) IsFollowing(followerId, targetId int64) (exists bool) {
	var err = ur.Connection.QueryRow(
		"SELECT TRUE FROM follows WHERE follower_id = ? AND followee_id = ?",
		followerId, targetId,
	).Scan(&exists)
	return err == nil && exists
}

// ToggleFollow removes the follow edge when present and creates it otherwise,
// reporting the resulting state. The create branch alone notifies the target.
// The composite primary key on follows, combined with the single transaction,
// settles concurrent duplicate requests on exactly one edge.
func (ur *userRepository) ToggleFollow(follower auth.User, targetUsername string) (following bool, err error) {

	tx, err := ur.Connection.Begin()
	if err != nil {
		return false, err
	}

	// rolling back after a transaction commit results in a safe NOP
	defer func() { _ = tx.Rollback() }()

	var targetId int64
	err = tx.QueryRow("SELECT id FROM users WHERE username = ?", targetUsername).Scan(&targetId)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}

	result, err := tx.Exec(
		"DELETE FROM follows WHERE follower_id = ? AND followee_id = ?",
		follower.Id, targetId,
	)
	if err != nil {
		return false, err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if deleted == 1 {
		return false, tx.Commit()
	}

	_, err = tx.Exec(
		"INSERT INTO follows(follower_id, followee_id, date) VALUES(?, ?, ?)",
		follower.Id, targetId, ntime.Now(),
	)

	// a concurrent request won the insert; report the existing edge without a duplicate notification
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return true, tx.Commit()
	}
	if err != nil {
		return false, err
	}

	if err = ur.Notifications.Add(tx, targetId, fmt.Sprintf("%s followed you", follower.Username), ntime.Now()); err != nil {
		return false, err
	}

	return true, tx.Commit()
}
