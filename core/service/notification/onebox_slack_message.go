package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/18vikastg/onebox/core/domain"

	"github.com/slack-go/slack"
)

const (
	chatPreviewRunes = 300
	chatHeader       = "🎯 New interested lead detected"
)

// buildLeadMessage renders the Block Kit alert for one Interested message.
func buildLeadMessage(ln *domain.LeadNotification, leadID, dashboardURL string) *slack.WebhookMessage {
	msg := messageOf(ln)
	res := resultOf(ln)

	header := slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, chatHeader, true, false))

	intro := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, "*High-priority lead*\nA prospect has expressed interest in your services.", false, false),
		nil, nil,
	)

	fields := slack.NewSectionBlock(nil, []*slack.TextBlockObject{
		mrkdwn("*Subject:*\n" + orDefault(msg.Subject, "(no subject)")),
		mrkdwn("*From:*\n" + orDefault(msg.Sender, "(unknown sender)")),
		mrkdwn(fmt.Sprintf("*Confidence:*\n%.1f%%", res.Confidence*100)),
		mrkdwn("*Detected:*\n" + detectedAt(res.ClassifiedAt)),
	}, nil)

	excerpt := "*Preview:*\n```" + preview(msg.Body, chatPreviewRunes) + "```"
	previewBlock := slack.NewSectionBlock(mrkdwn(excerpt), nil, nil)

	view := slack.NewButtonBlockElement("view_lead", leadID,
		slack.NewTextBlockObject(slack.PlainTextType, "View Lead in Dashboard", true, false))
	view.Style = slack.StylePrimary
	view.URL = strings.TrimRight(dashboardURL, "/") + "?filter=Interested"

	contact := slack.NewButtonBlockElement("contact_lead", leadID,
		slack.NewTextBlockObject(slack.PlainTextType, "Contact Lead", true, false))
	contact.Style = slack.StyleDanger

	analytics := slack.NewButtonBlockElement("view_analytics", leadID,
		slack.NewTextBlockObject(slack.PlainTextType, "View Analytics", true, false))

	actions := slack.NewActionBlock("lead_actions", view, contact, analytics)

	footer := slack.NewContextBlock("lead_context",
		mrkdwn(fmt.Sprintf("Onebox lead classification | %s | Lead #%s", res.Method, leadID)))

	return &slack.WebhookMessage{
		Text: chatHeader + " - " + orDefault(msg.Subject, "(no subject)"),
		Blocks: &slack.Blocks{BlockSet: []slack.Block{
			header,
			slack.NewDividerBlock(),
			intro,
			fields,
			previewBlock,
			slack.NewDividerBlock(),
			actions,
			footer,
		}},
	}
}

// buildTestMessage is the connectivity check sent by TestChat.
func buildTestMessage(at time.Time) *slack.WebhookMessage {
	text := "Onebox notifier connectivity test at " + at.UTC().Format(time.RFC3339)
	return &slack.WebhookMessage{
		Text: text,
		Blocks: &slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(mrkdwn("*"+text+"*"), nil, nil),
		}},
	}
}

func mrkdwn(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

// detectedAt formats to second precision, "2006-01-02 15:04:05".
func detectedAt(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

// preview cuts text to n runes and marks the cut.
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
