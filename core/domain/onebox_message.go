package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrNilMessage     = errors.New("message is nil")
	ErrInvalidMessage = errors.New("message text is not valid UTF-8")
)

// NormalizedMessage is an email already extracted from MIME by the ingestion layer.
// Bodies are plain text; empty strings are allowed.
type NormalizedMessage struct {
	ID         string    `json:"id,omitempty" bson:"message_id,omitempty"`
	Account    string    `json:"account,omitempty" bson:"account,omitempty"`
	Subject    string    `json:"subject" bson:"subject"`
	Sender     string    `json:"sender" bson:"sender"`
	Body       string    `json:"body" bson:"body"`
	ReceivedAt time.Time `json:"received_at,omitempty" bson:"received_at,omitempty"`
}

// Validate rejects messages the classifier cannot safely process.
func (m *NormalizedMessage) Validate() error {
	if m == nil {
		return ErrNilMessage
	}
	if !utf8.ValidString(m.Subject) || !utf8.ValidString(m.Sender) || !utf8.ValidString(m.Body) {
		return ErrInvalidMessage
	}
	return nil
}

// QueryText is the text used for similarity lookups: subject then body.
func (m *NormalizedMessage) QueryText() string {
	return strings.TrimSpace(m.Subject + " " + m.Body)
}
