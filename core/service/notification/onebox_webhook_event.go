package notification

import (
	"time"

	"github.com/18vikastg/onebox/core/domain"
)

const (
	EventInterestedLead     = "new_interested_email_detected"
	EventTypeHeader         = "interested-email-detected"
	webhookPreviewRunes     = 500
	webhookPayloadVersion   = "1.0"
	webhookPriorityHigh     = "HIGH"
	defaultWebhookUserAgent = "onebox-lead-notifier/1.0"
)

// LeadEvent is the automation webhook payload.
type LeadEvent struct {
	Event               string              `json:"event"`
	Timestamp           string              `json:"timestamp"`
	LeadID              string              `json:"lead_id"`
	Priority            string              `json:"priority"`
	EmailClassification EmailClassification `json:"email_classification"`
	EmailDetails        EmailDetails        `json:"email_details"`
	AutomationTriggers  AutomationTriggers  `json:"automation_triggers"`
	SystemMetadata      SystemMetadata      `json:"system_metadata"`
}

type EmailClassification struct {
	Category             string  `json:"category"`
	ConfidenceScore      float64 `json:"confidence_score"`
	ClassificationMethod string  `json:"classification_method"`
}

type EmailDetails struct {
	Subject           string `json:"subject"`
	Sender            string `json:"sender"`
	ContentPreview    string `json:"content_preview"`
	FullContentLength int    `json:"full_content_length"`
	ReceivedAt        string `json:"received_at"`
}

// AutomationTriggers are hints for downstream automation. All set for every lead.
type AutomationTriggers struct {
	SendAutoResponse bool `json:"send_auto_response"`
	CreateCRMLead    bool `json:"create_crm_lead"`
	NotifySalesTeam  bool `json:"notify_sales_team"`
	ScheduleFollowUp bool `json:"schedule_follow_up"`
}

type SystemMetadata struct {
	Source     string `json:"source"`
	Feature    string `json:"feature"`
	Version    string `json:"version"`
	WebhookURL string `json:"webhook_url"`
}

func buildLeadEvent(ln *domain.LeadNotification, leadID, source, webhookURL string, now time.Time) *LeadEvent {
	msg := messageOf(ln)
	res := resultOf(ln)

	received := msg.ReceivedAt
	if received.IsZero() {
		received = now
	}

	return &LeadEvent{
		Event:     EventInterestedLead,
		Timestamp: now.UTC().Format(time.RFC3339),
		LeadID:    leadID,
		Priority:  webhookPriorityHigh,
		EmailClassification: EmailClassification{
			Category:             string(res.Category),
			ConfidenceScore:      res.Confidence,
			ClassificationMethod: string(res.Method),
		},
		EmailDetails: EmailDetails{
			Subject:           msg.Subject,
			Sender:            msg.Sender,
			ContentPreview:    truncateRunes(msg.Body, webhookPreviewRunes),
			FullContentLength: len([]rune(msg.Body)),
			ReceivedAt:        received.UTC().Format(time.RFC3339),
		},
		AutomationTriggers: AutomationTriggers{
			SendAutoResponse: true,
			CreateCRMLead:    true,
			NotifySalesTeam:  true,
			ScheduleFollowUp: true,
		},
		SystemMetadata: SystemMetadata{
			Source:     source,
			Feature:    "lead-notification",
			Version:    webhookPayloadVersion,
			WebhookURL: webhookURL,
		},
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func messageOf(ln *domain.LeadNotification) *domain.NormalizedMessage {
	if ln == nil || ln.Message == nil {
		return &domain.NormalizedMessage{}
	}
	return ln.Message
}

func resultOf(ln *domain.LeadNotification) *domain.ClassificationResult {
	if ln == nil || ln.Result == nil {
		return &domain.ClassificationResult{Category: domain.CategoryUncategorized}
	}
	return ln.Result
}
