package sqlite

const schema = `
BEGIN TRANSACTION;

CREATE TABLE
	IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		display TEXT NOT NULL,
		avatar_color TEXT NOT NULL
	);

CREATE TABLE
	IF NOT EXISTS follows (
		follower_id INTEGER NOT NULL,
		followee_id INTEGER NOT NULL,
		date datetime NOT NULL,
		PRIMARY KEY (follower_id, followee_id),
		FOREIGN KEY (follower_id) REFERENCES users (id),
		FOREIGN KEY (followee_id) REFERENCES users (id)
	);

CREATE TABLE
	IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		image TEXT NOT NULL,
		created datetime NOT NULL,
		FOREIGN KEY (author_id) REFERENCES users (id)
	);

CREATE TABLE
	IF NOT EXISTS likes (
		user_id INTEGER NOT NULL,
		post_id INTEGER NOT NULL,
		date datetime NOT NULL,
		PRIMARY KEY (user_id, post_id),
		FOREIGN KEY (user_id) REFERENCES users (id),
		FOREIGN KEY (post_id) REFERENCES posts (id)
	);

CREATE TABLE
	IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL,
		author_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		created datetime NOT NULL,
		FOREIGN KEY (post_id) REFERENCES posts (id),
		FOREIGN KEY (author_id) REFERENCES users (id)
	);

CREATE TABLE
	IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender_id INTEGER NOT NULL,
		recipient_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		created datetime NOT NULL,
		FOREIGN KEY (sender_id) REFERENCES users (id),
		FOREIGN KEY (recipient_id) REFERENCES users (id)
	);

CREATE TABLE
	IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		created datetime NOT NULL,
		seen INTEGER NOT NULL DEFAULT FALSE,
		FOREIGN KEY (user_id) REFERENCES users (id)
	);

COMMIT;
`
