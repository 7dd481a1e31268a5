// Package notification delivers lead alerts to a chat webhook and an automation webhook.
package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/pkg/httputil"
	"github.com/18vikastg/onebox/pkg/logger"
	"github.com/18vikastg/onebox/pkg/metrics"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/slack-go/slack"
)

var ErrChannelNotConfigured = errors.New("notification channel not configured")

// Config holds destinations and the per-call deadline.
type Config struct {
	SlackWebhookURL      string
	AutomationWebhookURL string
	DashboardURL         string
	Source               string
	UserAgent            string
	Timeout              time.Duration
}

// Notifier sends best-effort lead alerts. One attempt per channel, no retry.
type Notifier struct {
	cfg       Config
	client    *http.Client
	now       func() time.Time
	newLeadID func() string
}

func NewNotifier(cfg Config) *Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Source == "" {
		cfg.Source = "Onebox Lead Classification"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultWebhookUserAgent
	}
	return &Notifier{
		cfg:       cfg,
		client:    httputil.NewOptimizedClient(httputil.NotifierClientConfig(cfg.Timeout)),
		now:       time.Now,
		newLeadID: newLeadID,
	}
}

// newLeadID returns 8 uppercase hex characters.
func newLeadID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// Notify alerts both channels for Interested messages. Any other category is a no-op
// reported as fully sent. Channel failures are logged and reported as false.
func (n *Notifier) Notify(ctx context.Context, ln *domain.LeadNotification) domain.NotifyOutcome {
	if resultOf(ln).Category != domain.CategoryInterested {
		return domain.NotifyOutcome{ChatSent: true, WebhookSent: true}
	}

	leadID := n.newLeadID()
	log := logger.WithContext(ctx).WithField("lead_id", leadID)

	outcome := domain.NotifyOutcome{}

	if err := n.SendChat(ctx, ln, leadID); err != nil {
		log.WithError(err).Warn("[Notifier] chat alert failed")
	} else {
		outcome.ChatSent = true
	}
	metrics.ObserveNotification("chat", outcome.ChatSent)

	if err := n.SendWebhook(ctx, ln, leadID); err != nil {
		log.WithError(err).Warn("[Notifier] automation webhook failed")
	} else {
		outcome.WebhookSent = true
	}
	metrics.ObserveNotification("webhook", outcome.WebhookSent)

	log.WithFields(map[string]any{
		"chat_sent":    outcome.ChatSent,
		"webhook_sent": outcome.WebhookSent,
	}).Info("[Notifier] lead alert processed")
	return outcome
}

// SendChat posts the Block Kit alert. Success is HTTP 200.
func (n *Notifier) SendChat(ctx context.Context, ln *domain.LeadNotification, leadID string) error {
	if n.cfg.SlackWebhookURL == "" {
		return fmt.Errorf("chat: %w", ErrChannelNotConfigured)
	}
	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	msg := buildLeadMessage(ln, leadID, n.cfg.DashboardURL)
	return slack.PostWebhookCustomHTTPContext(ctx, n.cfg.SlackWebhookURL, n.client, msg)
}

// SendWebhook posts the lead event. Success is HTTP 200, 201 or 202.
func (n *Notifier) SendWebhook(ctx context.Context, ln *domain.LeadNotification, leadID string) error {
	if n.cfg.AutomationWebhookURL == "" {
		return fmt.Errorf("webhook: %w", ErrChannelNotConfigured)
	}
	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	event := buildLeadEvent(ln, leadID, n.cfg.Source, n.cfg.AutomationWebhookURL, n.now())
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal lead event: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, n.cfg.AutomationWebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", n.cfg.UserAgent)
	req.Header.Set("X-Event-Type", EventTypeHeader)

	resp, err := httputil.DoWithContext(ctx, n.client, req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return nil
	default:
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
}

// TestChat sends a connectivity check to the chat webhook.
func (n *Notifier) TestChat(ctx context.Context) error {
	if n.cfg.SlackWebhookURL == "" {
		return fmt.Errorf("chat: %w", ErrChannelNotConfigured)
	}
	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()
	return slack.PostWebhookCustomHTTPContext(ctx, n.cfg.SlackWebhookURL, n.client, buildTestMessage(n.now()))
}
