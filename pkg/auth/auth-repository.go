package auth

import "database/sql"

type Repository struct {
	Connection *sql.DB
}

func NewRepository(connection *sql.DB) *Repository {
	return &Repository{connection}
}

// GetUserById either returns the user matching the id, or an error (along with an ignorable empty struct).
func (ar *Repository) GetUserById(id int64) (user User, err error) {
	err = ar.Connection.QueryRow(
		"SELECT id, username, display, avatar_color FROM users WHERE id = ?", id,
	).Scan(&user.Id, &user.Username, &user.Display, &user.AvatarColor)
	if err != nil {
		return User{}, err
	}
	return user, nil
}
