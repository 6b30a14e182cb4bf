package users

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// RegisterData carries the credentials of a prospective user; the display name
// falls back to the username when omitted.
type RegisterData struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Display  string `json:"display"`
}

func (data RegisterData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Username, validation.Required),
		validation.Field(&data.Password, validation.Required),
	)
}

type LoginData struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (data LoginData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Username, validation.Required),
		validation.Field(&data.Password, validation.Required),
	)
}

// UpdateProfileData tolerates absent or empty display names; updating with one
// is an idempotent no-op rather than an error.
type UpdateProfileData struct {
	Display string `json:"display"`
}

func (data UpdateProfileData) Validate() error {
	return nil
}

// Listing describes users in the public directory; ids stay internal.
type Listing struct {
	Username    string `json:"username"`
	Display     string `json:"display"`
	AvatarColor string `json:"avatarColor"`
}

// Profile adds follower counts, derived at read time, to the public fields.
type Profile struct {
	Username       string `json:"username"`
	Display        string `json:"display"`
	AvatarColor    string `json:"avatarColor"`
	FollowingCount int    `json:"following_count"`
	FollowersCount int    `json:"followers_count"`
}
