package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/18vikastg/onebox/core/service/notification"
	"github.com/18vikastg/onebox/pkg/apperr"
	"github.com/18vikastg/onebox/pkg/response"
)

// ChatTester checks the chat channel.
type ChatTester interface {
	TestChat(ctx context.Context) error
}

type NotificationHandler struct {
	tester ChatTester
}

func NewNotificationHandler(tester ChatTester) *NotificationHandler {
	return &NotificationHandler{tester: tester}
}

func (h *NotificationHandler) Register(r fiber.Router) {
	r.Post("/notifications/test", h.TestChat)
}

func (h *NotificationHandler) TestChat(c *fiber.Ctx) error {
	err := h.tester.TestChat(c.UserContext())
	switch {
	case err == nil:
		return response.OK(c, fiber.Map{"chat_sent": true})
	case errors.Is(err, notification.ErrChannelNotConfigured):
		return apperr.Unavailable("chat webhook")
	default:
		return apperr.ExternalError("chat webhook", err)
	}
}
