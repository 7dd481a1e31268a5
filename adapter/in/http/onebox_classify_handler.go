package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/in"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/pkg/apperr"
	"github.com/18vikastg/onebox/pkg/logger"
	"github.com/18vikastg/onebox/pkg/response"
)

// ClassifyHandler serves synchronous classification and job intake.
type ClassifyHandler struct {
	svc  in.ClassificationService
	jobs out.JobProducer
	// notifyAfter is set when the service does not notify inline.
	notifyAfter bool
}

func NewClassifyHandler(svc in.ClassificationService, jobs out.JobProducer, notifyAfter bool) *ClassifyHandler {
	return &ClassifyHandler{svc: svc, jobs: jobs, notifyAfter: notifyAfter}
}

func (h *ClassifyHandler) Register(r fiber.Router) {
	r.Post("/classify", h.Classify)
	r.Post("/classify/batch", h.ClassifyBatch)

	jobs := r.Group("/jobs")
	jobs.Post("/classify", h.EnqueueClassify)
	jobs.Post("/classify/batch", h.EnqueueClassifyBatch)
	jobs.Post("/suggest-reply", h.EnqueueSuggestReply)
}

type classifyResponse struct {
	ID           string                       `json:"id"`
	Result       *domain.ClassificationResult `json:"result"`
	Notification *domain.NotifyOutcome        `json:"notification,omitempty"`
}

func (h *ClassifyHandler) Classify(c *fiber.Ctx) error {
	var msg domain.NormalizedMessage
	if err := bindJSON(c, &msg); err != nil {
		return err
	}
	if err := prepareMessage(&msg); err != nil {
		return err
	}

	ctx := c.UserContext()
	rec := h.svc.ClassifyAndStore(ctx, &msg)
	resp := classifyResponse{ID: rec.ID, Result: rec.Result}
	if h.notifyAfter {
		resp.Notification = h.svc.NotifyIfInterested(ctx, &msg, rec.Result)
	}
	return response.OK(c, resp)
}

type batchResponse struct {
	Records []*domain.ClassificationRecord `json:"records"`
	Stats   domain.BatchStats              `json:"stats"`
}

func (h *ClassifyHandler) ClassifyBatch(c *fiber.Ctx) error {
	var req batchRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx := c.UserContext()
	records, stats := h.svc.ClassifyBatch(ctx, req.Messages)
	if h.notifyAfter {
		for _, rec := range records {
			if rec.Message != nil {
				h.svc.NotifyIfInterested(ctx, rec.Message, rec.Result)
			}
		}
	}
	return response.OKWithMeta(c, batchResponse{Records: records, Stats: stats}, &response.Meta{Total: stats.Total})
}

func (h *ClassifyHandler) EnqueueClassify(c *fiber.Ctx) error {
	if h.jobs == nil {
		return apperr.Unavailable("job queue")
	}
	var msg domain.NormalizedMessage
	if err := bindJSON(c, &msg); err != nil {
		return err
	}
	if err := prepareMessage(&msg); err != nil {
		return err
	}

	id, err := h.jobs.PublishClassify(c.UserContext(), &msg)
	if err != nil {
		return apperr.ExternalError("job queue", err)
	}
	logger.WithContext(c.UserContext()).Debug("enqueued classify job %s", id)
	return response.Accepted(c, fiber.Map{"job_id": id})
}

func (h *ClassifyHandler) EnqueueClassifyBatch(c *fiber.Ctx) error {
	if h.jobs == nil {
		return apperr.Unavailable("job queue")
	}
	var req batchRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	msgs := make([]domain.NormalizedMessage, 0, len(req.Messages))
	for i, m := range req.Messages {
		if m == nil {
			return apperr.InvalidInput("messages", "entry is null").WithDetail("index", i)
		}
		msgs = append(msgs, *m)
	}

	id, err := h.jobs.PublishClassifyBatch(c.UserContext(), msgs)
	if err != nil {
		return apperr.ExternalError("job queue", err)
	}
	return response.Accepted(c, fiber.Map{"job_id": id, "count": len(msgs)})
}

func (h *ClassifyHandler) EnqueueSuggestReply(c *fiber.Ctx) error {
	if h.jobs == nil {
		return apperr.Unavailable("job queue")
	}
	var msg domain.NormalizedMessage
	if err := bindJSON(c, &msg); err != nil {
		return err
	}
	if err := prepareMessage(&msg); err != nil {
		return err
	}

	id, err := h.jobs.PublishSuggestReply(c.UserContext(), &msg)
	if err != nil {
		return apperr.ExternalError("job queue", err)
	}
	return response.Accepted(c, fiber.Map{"job_id": id})
}
