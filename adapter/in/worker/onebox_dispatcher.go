package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/in"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/pkg/logger"
)

// ErrEmptyBatch is returned for a batch job without messages.
var ErrEmptyBatch = errors.New("batch job has no messages")

// permanentError marks a job that fails the same way on every attempt.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return &permanentError{err: err} }

// IsPermanent reports whether retrying the job is pointless.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Handler routes stream jobs to the classification and reply services.
type Handler struct {
	classifier in.ClassificationService
	replies    in.ReplyService
	events     out.EventPublisher
}

// NewHandler wires a handler. events may be nil.
func NewHandler(classifier in.ClassificationService, replies in.ReplyService, events out.EventPublisher) *Handler {
	return &Handler{
		classifier: classifier,
		replies:    replies,
		events:     events,
	}
}

func (h *Handler) Process(ctx context.Context, msg *Message) error {
	logger.Debug("Processing message: %s", msg.Type)

	switch msg.Type {
	case JobEmailClassify:
		return h.processClassify(ctx, msg)
	case JobEmailClassifyBatch:
		return h.processClassifyBatch(ctx, msg)
	case JobEmailSuggestReply:
		return h.processSuggestReply(ctx, msg)
	default:
		logger.Warn("Unknown job type: %s", msg.Type)
		return nil
	}
}

func (h *Handler) processClassify(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[ClassifyPayload](msg)
	if err != nil {
		return permanent(fmt.Errorf("decode classify payload: %w", err))
	}
	if err := payload.Message.Validate(); err != nil {
		// Bad input never succeeds on retry; drop it.
		logger.WithError(err).WithField("job_id", msg.ID).Warn("[Worker] invalid message dropped")
		return nil
	}

	rec := h.classifier.ClassifyAndStore(ctx, &payload.Message)
	logger.WithFields(map[string]any{
		"job_id":   msg.ID,
		"category": rec.Result.Category,
		"method":   rec.Result.Method,
	}).Info("[Worker] message classified")
	return nil
}

func (h *Handler) processClassifyBatch(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[ClassifyBatchPayload](msg)
	if err != nil {
		return permanent(fmt.Errorf("decode batch payload: %w", err))
	}
	if len(payload.Messages) == 0 {
		return permanent(ErrEmptyBatch)
	}

	msgs := make([]*domain.NormalizedMessage, len(payload.Messages))
	for i := range payload.Messages {
		msgs[i] = &payload.Messages[i]
	}
	_, stats := h.classifier.ClassifyBatch(ctx, msgs)

	h.publish(ctx, EventBatchClassified, map[string]any{
		"job_id": msg.ID,
		"stats":  stats,
	})
	return nil
}

func (h *Handler) processSuggestReply(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[SuggestReplyPayload](msg)
	if err != nil {
		return permanent(fmt.Errorf("decode reply payload: %w", err))
	}

	m := payload.Message
	suggestion := h.replies.Suggest(ctx, &domain.ReplyRequest{
		Body:    m.Body,
		Sender:  m.Sender,
		Subject: m.Subject,
	})
	if !suggestion.Success {
		logger.WithField("job_id", msg.ID).Warn("[Worker] no reply suggestion: %s", suggestion.Error)
	}

	h.publish(ctx, EventReplySuggested, map[string]any{
		"message_id": m.ID,
		"suggestion": suggestion,
	})
	return nil
}

func (h *Handler) publish(ctx context.Context, eventType string, payload any) {
	if h.events == nil {
		return
	}
	if err := h.events.PublishEvent(ctx, eventType, payload); err != nil {
		logger.WithError(err).WithField("event", eventType).Warn("[Worker] event publish failed")
	}
}
