package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/18vikastg/onebox/core/agent/rag"
	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/in"
	"github.com/18vikastg/onebox/pkg/apperr"
	"github.com/18vikastg/onebox/pkg/response"
	"github.com/18vikastg/onebox/pkg/textutil"
)

// ReplyHandler serves reply suggestions and template management.
type ReplyHandler struct {
	svc in.ReplyService
}

func NewReplyHandler(svc in.ReplyService) *ReplyHandler {
	return &ReplyHandler{svc: svc}
}

func (h *ReplyHandler) Register(r fiber.Router) {
	r.Post("/replies/suggest", h.Suggest)

	r.Post("/templates", h.AddTemplates)
	r.Get("/templates/stats", h.Stats)
}

// Suggest always answers 200; a failed suggestion carries method=Failed and an error string.
func (h *ReplyHandler) Suggest(c *fiber.Ctx) error {
	var req domain.ReplyRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	req.Body = textutil.PlainText(req.Body)
	if strings.TrimSpace(req.Body) == "" && strings.TrimSpace(req.Subject) == "" {
		return apperr.MissingField("body")
	}

	return response.OK(c, h.svc.Suggest(c.UserContext(), &req))
}

// addTemplatesRequest accepts either full entries or a single user template.
type addTemplatesRequest struct {
	Templates []domain.ReplyTemplateEntry `json:"templates"`

	Scenario string `json:"scenario"`
	Pattern  string `json:"pattern"`
	Reply    string `json:"reply"`
	Category string `json:"category"`
}

func (h *ReplyHandler) AddTemplates(c *fiber.Ctx) error {
	var req addTemplatesRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	var err error
	added := len(req.Templates)
	switch {
	case added > 0:
		err = h.svc.AddTemplates(ctx, req.Templates)
	case req.Scenario != "":
		added = 1
		err = h.svc.AddUserTemplate(ctx, req.Scenario, req.Pattern, req.Reply, req.Category)
	default:
		return apperr.MissingField("templates")
	}
	if err != nil {
		return templateError(err)
	}
	return response.Created(c, fiber.Map{"added": added})
}

func (h *ReplyHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return apperr.DatabaseError("template stats", err)
	}
	return response.OK(c, stats)
}

func templateError(err error) error {
	switch {
	case errors.Is(err, rag.ErrDuplicateScenario):
		return apperr.AlreadyExists("scenario").WithError(err).WithDetail("reason", err.Error())
	case errors.Is(err, rag.ErrInvalidTemplate), errors.Is(err, rag.ErrUnknownPlaceholder):
		return apperr.ValidationFailed(err.Error())
	default:
		return apperr.InternalWithError(err)
	}
}
