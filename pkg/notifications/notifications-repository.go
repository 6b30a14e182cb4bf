package notifications

import (
	"database/sql"
	"strings"

	"github.com/seliand/macaw/pkg/ntime"
)

const recentLimit = 50

type Repository interface {
	Add(tx *sql.Tx, userId int64, text string, date ntime.NTime) error
	GetRecent(userId int64) ([]Notification, error)
}

type repository struct {
	Connection *sql.DB
}

func NewRepository(connection *sql.DB) Repository {
	return &repository{connection}
}

// Add appends a notification within the caller's transaction, so the side effect
// shares the fate of the write which triggered it.
func (nr *repository) Add(tx *sql.Tx, userId int64, text string, date ntime.NTime) error {
	_, err := tx.Exec(
		"INSERT INTO notifications(user_id, text, created) VALUES(?, ?, ?)",
		userId, text, date,
	)
	return err
}

// GetRecent returns the owner's newest notifications and marks the returned ones
// as seen, within a single transaction.
func (nr *repository) GetRecent(userId int64) ([]Notification, error) {

	tx, err := nr.Connection.Begin()
	if err != nil {
		return nil, err
	}

	// rolling back after a transaction commit results in a safe NOP
	defer func() { _ = tx.Rollback() }()

	// initialise an empty slice to avoid null serialisation
	var fetched = make([]Notification, 0)
	var fetchedIds = make([]any, 0, recentLimit)

	rows, err := tx.Query(`
		SELECT id, text, created, seen FROM notifications
		WHERE user_id = ?
		ORDER BY created DESC, id DESC
		LIMIT ?`,
		userId, recentLimit,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var id int64
		var notification Notification
		if err = rows.Scan(&id, &notification.Text, &notification.At, &notification.Seen); err != nil {
			_ = rows.Close()
			return fetched, err
		}
		fetched = append(fetched, notification)
		fetchedIds = append(fetchedIds, id)
	}

	if err = rows.Err(); err != nil {
		return fetched, err
	}
	if err = rows.Close(); err != nil {
		return fetched, err
	}

	if len(fetchedIds) == 0 {
		return fetched, tx.Commit()
	}

	// flag the very rows just scanned, not whatever tops the backlog by now
	if _, err = tx.Exec(
		"UPDATE notifications SET seen = TRUE WHERE id IN (?"+strings.Repeat(", ?", len(fetchedIds)-1)+")",
		fetchedIds...,
	); err != nil {
		return fetched, err
	}

	return fetched, tx.Commit()
}
