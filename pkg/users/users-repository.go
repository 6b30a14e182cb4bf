package users

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand"

	"github.com/mattn/go-sqlite3"
	"github.com/seliand/macaw/pkg/auth"
	"github.com/seliand/macaw/pkg/notifications"
	"golang.org/x/crypto/bcrypt"
)

// avatarPalette provides the fixed colours randomly assigned at registration.
var avatarPalette = [...]string{"#fda4af", "#a78bfa", "#60a5fa", "#fde68a", "#bbf7d0"}

const listingLimit = 100

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type UserRepository interface {
	Register(data RegisterData) (auth.User, error)
	Authenticate(data LoginData) (auth.User, error)
	GetUserById(id int64) (auth.User, error)
	GetAll() ([]Listing, error)
	GetProfile(userId int64) (Profile, error)
	UpdateDisplay(userId int64, display string) error

	IsFollowing(followerId, targetId int64) bool
	ToggleFollow(follower auth.User, targetUsername string) (following bool, err error)
}

type userRepository struct {
	Connection    *sql.DB
	Notifications notifications.Repository
}

func NewRepository(connection *sql.DB, nr notifications.Repository) UserRepository {
	return &userRepository{connection, nr}
}

// Register hashes the password, assigns a random avatar colour and creates the
// user row; duplicate usernames surface as ErrUsernameTaken.
func (ur *userRepository) Register(data RegisterData) (auth.User, error) {

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return auth.User{}, fmt.Errorf("couldn't hash password for %q: %w", data.Username, err)
	}

	var display = data.Display
	if display == "" {
		display = data.Username
	}
	var colour = avatarPalette[rand.Intn(len(avatarPalette))]

	result, err := ur.Connection.Exec(
		"INSERT INTO users(username, password, display, avatar_color) VALUES(?, ?, ?, ?)",
		data.Username, string(hash), display, colour,
	)

	// detect username uniqueness violations, which signal a taken name
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return auth.User{}, ErrUsernameTaken
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("couldn't add user %q: %w", data.Username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return auth.User{}, err
	}

	return auth.User{Id: id, Username: data.Username, Display: display, AvatarColor: colour}, nil
}

// Authenticate matches the given credentials against the stored hash and can return:
//  1. ErrNotFound: no user answers to the username
//  2. ErrInvalidCredentials: the password doesn't match
//  3. a generic SQL error that occurred during the lookup
func (ur *userRepository) Authenticate(data LoginData) (user auth.User, err error) {
	var hash string
	err = ur.Connection.QueryRow(
		"SELECT id, username, display, avatar_color, password FROM users WHERE username = ?",
		data.Username,
	).Scan(&user.Id, &user.Username, &user.Display, &user.AvatarColor, &hash)

	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, ErrNotFound
	}
	if err != nil {
		return auth.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(data.Password)) != nil {
		return auth.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (ur *userRepository) GetUserById(id int64) (user auth.User, err error) {
	// if the query selects no rows, *Row's `Scan` will return ErrNoRows
	if err = ur.Connection.QueryRow(
		"SELECT id, username, display, avatar_color FROM users WHERE id = ?", id,
	).Scan(&user.Id, &user.Username, &user.Display, &user.AvatarColor); err != nil {
		return user, err
	}
	return user, nil
}

func (ur *userRepository) GetAll() ([]Listing, error) {

	// initialise an empty slice to avoid null serialisation
	var listings = make([]Listing, 0)

	rows, err := ur.Connection.Query(
		"SELECT username, display, avatar_color FROM users ORDER BY username LIMIT ?",
		listingLimit,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var listing Listing
		if err = rows.Scan(&listing.Username, &listing.Display, &listing.AvatarColor); err != nil {
			_ = rows.Close()
			return listings, err
		}
		listings = append(listings, listing)
	}

	if err = rows.Err(); err != nil {
		return listings, err
	}
	if err = rows.Close(); err != nil {
		return listings, err
	}

	return listings, nil
}

// GetProfile computes follower counts with correlated subqueries at read time;
// no counters are maintained on write.
func (ur *userRepository) GetProfile(userId int64) (profile Profile, err error) {
	err = ur.Connection.QueryRow(`
		SELECT username, display, avatar_color,
			(SELECT count(*) FROM follows WHERE follower_id = users.id) as following,
			(SELECT count(*) FROM follows WHERE followee_id = users.id) as followers
		FROM users WHERE id = ?`,
		userId,
	).Scan(&profile.Username, &profile.Display, &profile.AvatarColor, &profile.FollowingCount, &profile.FollowersCount)
	if err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func (ur *userRepository) UpdateDisplay(userId int64, display string) error {
	_, err := ur.Connection.Exec("UPDATE users SET display = ? WHERE id = ?", display, userId)
	return err
}
