package http

import (
	"errors"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/pkg/apperr"
	"github.com/18vikastg/onebox/pkg/textutil"
)

// MaxBatchSize caps messages per batch request.
const MaxBatchSize = 100

// bindJSON decodes the request body regardless of Content-Type.
func bindJSON(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		return apperr.BadRequest("request body is required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.BadRequest("invalid JSON body").WithError(err)
	}
	return nil
}

// prepareMessage validates msg and flattens an HTML body to text.
func prepareMessage(msg *domain.NormalizedMessage) error {
	if err := msg.Validate(); err != nil {
		if errors.Is(err, domain.ErrNilMessage) {
			return apperr.MissingField("message")
		}
		return apperr.InvalidInput("message", err.Error())
	}
	msg.Body = textutil.PlainText(msg.Body)
	return nil
}

type batchRequest struct {
	Messages []*domain.NormalizedMessage `json:"messages"`
}

func (r *batchRequest) validate() error {
	if len(r.Messages) == 0 {
		return apperr.MissingField("messages")
	}
	if len(r.Messages) > MaxBatchSize {
		return apperr.ValidationFailed("too many messages in batch").
			WithDetail("max", MaxBatchSize).
			WithDetail("got", len(r.Messages))
	}
	for _, m := range r.Messages {
		if m != nil {
			m.Body = textutil.PlainText(m.Body)
		}
	}
	return nil
}
