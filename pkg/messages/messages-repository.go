package messages

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/seliand/macaw/pkg/auth"
	"github.com/seliand/macaw/pkg/notifications"
	"github.com/seliand/macaw/pkg/ntime"
)

var ErrNotFound = errors.New("recipient not found")

type MessageRepository interface {
	Send(sender auth.User, data SendMessageData) error
	GetThreads(userId int64) ([]Thread, error)
}

type messageRepository struct {
	Connection    *sql.DB
	Notifications notifications.Repository
}

func NewRepository(connection *sql.DB, nr notifications.Repository) MessageRepository {
	return &messageRepository{connection, nr}
}

// Send appends a message and notifies the recipient within a single transaction.
func (mr *messageRepository) Send(sender auth.User, data SendMessageData) error {

	tx, err := mr.Connection.Begin()
	if err != nil {
		return err
	}

	// rolling back after a transaction commit results in a safe NOP
	defer func() { _ = tx.Rollback() }()

	var recipientId int64
	err = tx.QueryRow("SELECT id FROM users WHERE username = ?", data.To).Scan(&recipientId)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var now = ntime.Now()
	if _, err = tx.Exec(
		"INSERT INTO messages(sender_id, recipient_id, text, created) VALUES(?, ?, ?, ?)",
		sender.Id, recipientId, data.Text, now,
	); err != nil {
		return err
	}

	if err = mr.Notifications.Add(tx, recipientId,
		fmt.Sprintf("%s sent you a message", sender.Username), now); err != nil {
		return err
	}

	return tx.Commit()
}

// GetThreads groups the user's messages by counterpart, one row per
// counterpart holding the latest exchanged message. "Latest" means the highest
// message id, which makes the survivor of each group explicit instead of
// leaning on the engine's bare GROUP BY row choice.
func (mr *messageRepository) GetThreads(userId int64) ([]Thread, error) {

	var threads = make([]Thread, 0)

	rows, err := mr.Connection.Query(`
		SELECT u.username, m.text, m.created
		FROM messages m
		JOIN users u ON u.id = CASE WHEN m.sender_id = ? THEN m.recipient_id ELSE m.sender_id END
		WHERE m.id IN (
			SELECT max(id) FROM messages
			WHERE sender_id = ? OR recipient_id = ?
			GROUP BY CASE WHEN sender_id = ? THEN recipient_id ELSE sender_id END
		)
		ORDER BY m.created DESC, m.id DESC`,
		userId, userId, userId, userId,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var thread Thread
		if err = rows.Scan(&thread.With, &thread.LastText, &thread.At); err != nil {
			_ = rows.Close()
			return threads, err
		}
		threads = append(threads, thread)
	}

	if err = rows.Err(); err != nil {
		return threads, err
	}
	if err = rows.Close(); err != nil {
		return threads, err
	}

	return threads, nil
}
