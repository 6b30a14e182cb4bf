package messages

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/seliand/macaw/pkg/ntime"
)

type SendMessageData struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

func (data SendMessageData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.To, validation.Required),
		validation.Field(&data.Text, validation.Required),
	)
}

// Thread is a derived grouping of messages by conversation counterpart, not a
// stored entity; each carries the most recent message exchanged with that user.
type Thread struct {
	With     string      `json:"with"`
	LastText string      `json:"last_text"`
	At       ntime.NTime `json:"at"`
}
