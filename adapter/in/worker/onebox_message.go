package worker

import (
	"time"

	"github.com/18vikastg/onebox/core/domain"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// JobType represents the type of a job.
type JobType = string

const (
	JobEmailClassify      JobType = "email.classify"
	JobEmailClassifyBatch JobType = "email.classify_batch"
	JobEmailSuggestReply  JobType = "email.suggest_reply"
)

// Event types published after a job completes. email.classified is emitted by the event sink.
const (
	EventReplySuggested  = "email.reply_suggested"
	EventBatchClassified = "email.batch_classified"
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
	Retries   int            `json:"retries"`
}

func NewMessage(jobType string, payload map[string]any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// ClassifyPayload carries one message to classify.
type ClassifyPayload struct {
	Message domain.NormalizedMessage `json:"message"`
}

// ClassifyBatchPayload carries several messages classified in one job.
type ClassifyBatchPayload struct {
	Messages []domain.NormalizedMessage `json:"messages"`
}

// SuggestReplyPayload asks for a reply suggestion for one message.
type SuggestReplyPayload struct {
	Message domain.NormalizedMessage `json:"message"`
}

// PayloadMap converts a typed payload to the generic map stored on a Message.
func PayloadMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
