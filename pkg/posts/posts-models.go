package posts

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/seliand/macaw/pkg/ntime"
)

type AddPostData struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// Validate accepts any post carrying text or an image link; both may coexist.
func (data AddPostData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Text,
			validation.Required.When(data.Image == "").Error("need text or image")),
	)
}

type CommentData struct {
	Text string `json:"text"`
}

func (data CommentData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Text, validation.By(func(interface{}) error {
			// whitespace-only comments count as empty
			return validation.Validate(strings.TrimSpace(data.Text), validation.Required)
		})),
	)
}

// Filter selects one of the three mutually exclusive listing modes; a search
// query takes precedence over the trending flag.
type Filter struct {
	Query    string
	Trending bool
}

// Response DTOs

type Comment struct {
	Text string      `json:"text"`
	By   string      `json:"by"`
	At   ntime.NTime `json:"at"`
}

type Post struct {
	Id            int64       `json:"id"`
	Text          string      `json:"text"`
	Image         string      `json:"image"`
	CreatedAt     ntime.NTime `json:"createdAt"`
	Author        string      `json:"author"`
	Display       string      `json:"display"`
	AvatarColor   string      `json:"avatarColor"`
	LikesCount    int         `json:"likes_count"`
	CommentsCount int         `json:"comments_count"`
	Comments      []Comment   `json:"comments"`
}
