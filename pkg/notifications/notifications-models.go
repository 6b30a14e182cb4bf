package notifications

import "github.com/seliand/macaw/pkg/ntime"

// Notification rows are free text on purpose: the producers (follows, likes,
// comments, messages) compose the sentence and owners only ever read it.
type Notification struct {
	Text string      `json:"text"`
	At   ntime.NTime `json:"at"`
	Seen bool        `json:"seen"`
}
