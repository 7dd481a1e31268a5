package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/18vikastg/onebox/core/agent/llm"
	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/pkg/apperr"
	"github.com/18vikastg/onebox/pkg/logger"
	"github.com/18vikastg/onebox/pkg/metrics"
	"github.com/18vikastg/onebox/pkg/response"
)

// UsageReporter exposes LLM token spend.
type UsageReporter interface {
	Stats() llm.UsageStats
}

// StatsHandler serves operational statistics. Every dependency is optional.
type StatsHandler struct {
	counter out.ClassificationCounter
	senders out.SenderRanking
	usage   UsageReporter
}

func NewStatsHandler(counter out.ClassificationCounter, senders out.SenderRanking, usage UsageReporter) *StatsHandler {
	return &StatsHandler{counter: counter, senders: senders, usage: usage}
}

func (h *StatsHandler) Register(r fiber.Router) {
	r.Get("/stats", h.Overview)
	r.Get("/stats/categories", h.Categories)
	r.Get("/stats/senders", h.TopSenders)
}

func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	data := fiber.Map{"latency": metrics.GlobalRegistry().AllStats()}
	if h.usage != nil {
		data["llm_usage"] = h.usage.Stats()
	}
	return response.OK(c, data)
}

func (h *StatsHandler) Categories(c *fiber.Ctx) error {
	if h.counter == nil {
		return apperr.Unavailable("classification store")
	}
	counts, err := h.counter.CountByCategory(c.UserContext())
	if err != nil {
		return apperr.DatabaseError("count by category", err)
	}
	return response.OK(c, counts)
}

func (h *StatsHandler) TopSenders(c *fiber.Ctx) error {
	if h.senders == nil {
		return apperr.Unavailable("sender graph")
	}
	category := c.Query("category", string(domain.CategoryInterested))
	if _, ok := domain.ParseCategory(category); !ok {
		return apperr.InvalidInput("category", "unknown category")
	}
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > 100 {
		return apperr.InvalidInput("limit", "must be between 1 and 100")
	}

	rows, err := h.senders.TopSenders(c.UserContext(), category, limit)
	if err != nil {
		logger.WithContext(c.UserContext()).WithError(err).Warn("top senders query failed")
		return apperr.DatabaseError("top senders", err)
	}
	return response.OKWithMeta(c, rows, &response.Meta{Total: len(rows)})
}
