package auth

// User holds the public identity attached to authenticated requests.
// The password hash deliberately never leaves the repository layer.
type User struct {
	Id          int64  `json:"id"`
	Username    string `json:"username"`
	Display     string `json:"display"`
	AvatarColor string `json:"avatarColor"`
}
