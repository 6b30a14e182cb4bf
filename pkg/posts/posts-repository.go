package posts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/seliand/macaw/pkg/auth"
	"github.com/seliand/macaw/pkg/notifications"
	"github.com/seliand/macaw/pkg/ntime"
)

const (
	feedLimit     = 200
	trendingLimit = 50

	// commented notifications quote the comment's head only
	notifiedCommentRunes = 80
)

var ErrNotFound = errors.New("post not found")

type Storer interface {
	AddPost(authorId int64, data AddPostData) (int64, error)
	GetPosts(filter Filter) ([]Post, error)
	ToggleLike(user auth.User, postId int64) (liked bool, err error)
	AddComment(user auth.User, postId int64, text string) error
}

type Store struct {
	Connection    *sql.DB
	Notifications notifications.Repository
}

// NewStore returns a post repository, or store, wrapping the necessary dependencies.
func NewStore(connection *sql.DB, nr notifications.Repository) *Store {
	return &Store{connection, nr}
}

func (ps *Store) AddPost(authorId int64, data AddPostData) (int64, error) {
	result, err := ps.Connection.Exec(
		"INSERT INTO posts(author_id, text, image, created) VALUES(?, ?, ?, ?)",
		authorId, data.Text, data.Image, ntime.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("couldn't add post: %w", err)
	}
	return result.LastInsertId()
}

// the three modes share their projection: post columns, author public fields
// and counts derived by correlated subqueries
const postColumns = `
	SELECT p.id, p.text, p.image, p.created, u.username, u.display, u.avatar_color,
		(SELECT count(*) FROM likes WHERE post_id = p.id) as likes_count,
		(SELECT count(*) FROM comments WHERE post_id = p.id) as comments_count
	FROM posts p JOIN users u ON p.author_id = u.id`

/*
GetPosts fetches posts in one of three mutually exclusive modes: substring
search, trending by like count, or the default reverse chronological feed.
Ties and ordering are explicit, so results never depend on the engine's whims:
the feed and search break equal timestamps with descending ids, trending breaks
equal like counts with ascending ids, that is insertion order.

Each returned post carries its full ordered comment list; one query per post
is tolerable at this data scale and would need revisiting at any larger one.
*/
func (ps *Store) GetPosts(filter Filter) ([]Post, error) {

	var rows *sql.Rows
	var err error

	switch {
	case filter.Query != "":
		rows, err = ps.Connection.Query(
			postColumns+` WHERE p.text LIKE ? ORDER BY p.created DESC, p.id DESC LIMIT ?`,
			"%"+filter.Query+"%", feedLimit,
		)
	case filter.Trending:
		rows, err = ps.Connection.Query(
			postColumns+` ORDER BY likes_count DESC, p.id ASC LIMIT ?`,
			trendingLimit,
		)
	default:
		rows, err = ps.Connection.Query(
			postColumns+` ORDER BY p.created DESC, p.id DESC LIMIT ?`,
			feedLimit,
		)
	}
	if err != nil {
		return nil, err
	}

	// initialise an empty slice to avoid null serialisation
	var fetched = make([]Post, 0)

	for rows.Next() {
		var post Post
		if err = rows.Scan(&post.Id, &post.Text, &post.Image, &post.CreatedAt,
			&post.Author, &post.Display, &post.AvatarColor,
			&post.LikesCount, &post.CommentsCount); err != nil {
			_ = rows.Close()
			return fetched, err
		}
		fetched = append(fetched, post)
	}

	if err = rows.Err(); err != nil {
		return fetched, err
	}
	if err = rows.Close(); err != nil {
		return fetched, err
	}

	for i := range fetched {
		if fetched[i].Comments, err = ps.getPostComments(fetched[i].Id); err != nil {
			return fetched, err
		}
	}

	return fetched, nil
}

func (ps *Store) getPostComments(postId int64) ([]Comment, error) {

	var comments = make([]Comment, 0)
	rows, err := ps.Connection.Query(`
		SELECT c.text, u.username, c.created
		FROM comments c JOIN users u ON c.author_id = u.id
		WHERE c.post_id = ?
		ORDER BY c.created ASC, c.id ASC`,
		postId,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var comment Comment
		if err = rows.Scan(&comment.Text, &comment.By, &comment.At); err != nil {
			_ = rows.Close()
			return comments, err
		}
		comments = append(comments, comment)
	}

	if err = rows.Err(); err != nil {
		return comments, err
	}
	return comments, rows.Close()
}

// ToggleLike removes the user's like when present and creates it otherwise,
// reporting the resulting state. The create branch alone notifies the post's
// author, the author's own likes included. The composite primary key on likes,
// combined with the single transaction, settles concurrent duplicate requests
// on exactly one edge.
func (ps *Store) ToggleLike(user auth.User, postId int64) (liked bool, err error) {

	tx, err := ps.Connection.Begin()
	if err != nil {
		return false, err
	}

	// rolling back after a transaction commit results in a safe NOP
	defer func() { _ = tx.Rollback() }()

	var authorId int64
	err = tx.QueryRow("SELECT author_id FROM posts WHERE id = ?", postId).Scan(&authorId)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}

	result, err := tx.Exec("DELETE FROM likes WHERE user_id = ? AND post_id = ?", user.Id, postId)
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
		"INSERT INTO likes(user_id, post_id, date) VALUES(?, ?, ?)",
		user.Id, postId, ntime.Now(),
	)

	// a concurrent request won the insert; report the existing like without a duplicate notification
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return true, tx.Commit()
	}
	if err != nil {
		return false, err
	}

	if err = ps.Notifications.Add(tx, authorId, fmt.Sprintf("%s liked your post", user.Username), ntime.Now()); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// AddComment appends a comment and notifies the post's author, the author's
// own comments included, within a single transaction.
func (ps *Store) AddComment(user auth.User, postId int64, text string) error {

	tx, err := ps.Connection.Begin()
	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback() }()

	var authorId int64
	err = tx.QueryRow("SELECT author_id FROM posts WHERE id = ?", postId).Scan(&authorId)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var now = ntime.Now()
	if _, err = tx.Exec(
		"INSERT INTO comments(post_id, author_id, text, created) VALUES(?, ?, ?, ?)",
		postId, user.Id, text, now,
	); err != nil {
		return err
	}

	var quoted = []rune(text)
	if len(quoted) > notifiedCommentRunes {
		quoted = quoted[:notifiedCommentRunes]
	}
	if err = ps.Notifications.Add(tx, authorId,
		fmt.Sprintf("%s commented: %s", user.Username, string(quoted)), now); err != nil {
		return err
	}

	return tx.Commit()
}
