package notification

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/18vikastg/onebox/core/domain"

	"github.com/goccy/go-json"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	header http.Header
	body   []byte
}

func newRecorder(t *testing.T, status int, hits *int32, out *recordedRequest) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		body, _ := io.ReadAll(r.Body)
		if out != nil {
			out.header = r.Header.Clone()
			out.body = body
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func interestedLead() *domain.LeadNotification {
	return &domain.LeadNotification{
		Message: &domain.NormalizedMessage{
			Subject:    "Very interested - let's talk",
			Sender:     "ceo@bigcorp.com",
			Body:       strings.Repeat("x", 700),
			ReceivedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		},
		Result: &domain.ClassificationResult{
			Category:     domain.CategoryInterested,
			Confidence:   0.95,
			Method:       domain.MethodRule,
			ClassifiedAt: time.Date(2024, 3, 1, 9, 30, 5, 0, time.UTC),
		},
	}
}

func newTestNotifier(chatURL, hookURL string) *Notifier {
	n := NewNotifier(Config{
		SlackWebhookURL:      chatURL,
		AutomationWebhookURL: hookURL,
		DashboardURL:         "http://dash.local/",
		Timeout:              2 * time.Second,
	})
	n.newLeadID = func() string { return "ABCD1234" }
	n.now = func() time.Time { return time.Date(2024, 3, 1, 9, 31, 0, 0, time.UTC) }
	return n
}

func TestNotify_GuardSkipsNonInterested(t *testing.T) {
	var chatHits, hookHits int32
	chat := newRecorder(t, http.StatusOK, &chatHits, nil)
	hook := newRecorder(t, http.StatusOK, &hookHits, nil)
	n := newTestNotifier(chat.URL, hook.URL)

	for _, cat := range []domain.Category{
		domain.CategorySpam, domain.CategoryMeetingBooked, domain.CategoryNotInterested,
		domain.CategoryOutOfOffice, domain.CategoryUncategorized,
	} {
		ln := interestedLead()
		ln.Result.Category = cat
		outcome := n.Notify(context.Background(), ln)
		assert.Equal(t, domain.NotifyOutcome{ChatSent: true, WebhookSent: true}, outcome, cat)
	}
	assert.Zero(t, atomic.LoadInt32(&chatHits))
	assert.Zero(t, atomic.LoadInt32(&hookHits))
}

func TestNotify_BothChannelsSucceed(t *testing.T) {
	var chatHits, hookHits int32
	var chatReq, hookReq recordedRequest
	chat := newRecorder(t, http.StatusOK, &chatHits, &chatReq)
	hook := newRecorder(t, http.StatusCreated, &hookHits, &hookReq)
	n := newTestNotifier(chat.URL, hook.URL)

	outcome := n.Notify(context.Background(), interestedLead())
	assert.True(t, outcome.Complete())
	assert.EqualValues(t, 1, chatHits)
	assert.EqualValues(t, 1, hookHits)

	// chat payload
	var chatBody map[string]any
	require.NoError(t, json.Unmarshal(chatReq.body, &chatBody))
	assert.Contains(t, chatBody["text"], "Very interested")
	raw := string(chatReq.body)
	assert.Contains(t, raw, `"type":"header"`)
	assert.Contains(t, raw, "95.0%")
	assert.Contains(t, raw, "2024-03-01 09:30:05")
	assert.Contains(t, raw, "http://dash.local?filter=Interested")
	assert.Contains(t, raw, "Lead #ABCD1234")
	assert.Contains(t, raw, strings.Repeat("x", 300)+"...")
	assert.NotContains(t, raw, strings.Repeat("x", 301))

	// webhook payload
	assert.Equal(t, EventTypeHeader, hookReq.header.Get("X-Event-Type"))
	assert.Equal(t, "application/json", hookReq.header.Get("Content-Type"))
	assert.NotEmpty(t, hookReq.header.Get("User-Agent"))

	var event LeadEvent
	require.NoError(t, json.Unmarshal(hookReq.body, &event))
	assert.Equal(t, EventInterestedLead, event.Event)
	assert.Equal(t, "ABCD1234", event.LeadID)
	assert.Equal(t, "HIGH", event.Priority)
	assert.Equal(t, "Interested", event.EmailClassification.Category)
	assert.Equal(t, 0.95, event.EmailClassification.ConfidenceScore)
	assert.Equal(t, "Rule", event.EmailClassification.ClassificationMethod)
	assert.Len(t, event.EmailDetails.ContentPreview, 500)
	assert.Equal(t, 700, event.EmailDetails.FullContentLength)
	assert.Equal(t, "2024-03-01T09:30:00Z", event.EmailDetails.ReceivedAt)
	assert.Equal(t, AutomationTriggers{true, true, true, true}, event.AutomationTriggers)
	assert.Equal(t, "1.0", event.SystemMetadata.Version)
	assert.Equal(t, hook.URL, event.SystemMetadata.WebhookURL)
}

func TestNotify_WebhookStatuses(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusOK, true},
		{http.StatusCreated, true},
		{http.StatusAccepted, true},
		{http.StatusNoContent, false},
		{http.StatusBadRequest, false},
		{http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var chatHits, hookHits int32
			chat := newRecorder(t, http.StatusOK, &chatHits, nil)
			hook := newRecorder(t, tt.status, &hookHits, nil)
			outcome := newTestNotifier(chat.URL, hook.URL).Notify(context.Background(), interestedLead())
			assert.True(t, outcome.ChatSent)
			assert.Equal(t, tt.want, outcome.WebhookSent)
		})
	}
}

func TestNotify_ChatFailureDoesNotBlockWebhook(t *testing.T) {
	var chatHits, hookHits int32
	chat := newRecorder(t, http.StatusCreated, &chatHits, nil) // chat success is strictly 200
	hook := newRecorder(t, http.StatusAccepted, &hookHits, nil)

	outcome := newTestNotifier(chat.URL, hook.URL).Notify(context.Background(), interestedLead())
	assert.False(t, outcome.ChatSent)
	assert.True(t, outcome.WebhookSent)
	assert.False(t, outcome.Complete())
	assert.EqualValues(t, 1, hookHits)
}

func TestNotify_UnreachableAndUnconfigured(t *testing.T) {
	var hookHits int32
	hook := newRecorder(t, http.StatusOK, &hookHits, nil)

	outcome := newTestNotifier("http://127.0.0.1:1/unreachable", hook.URL).Notify(context.Background(), interestedLead())
	assert.False(t, outcome.ChatSent)
	assert.True(t, outcome.WebhookSent)

	outcome = newTestNotifier("", "").Notify(context.Background(), interestedLead())
	assert.Equal(t, domain.NotifyOutcome{}, outcome)
}

func TestNotify_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer slow.Close()

	n := newTestNotifier(slow.URL, slow.URL)
	n.cfg.Timeout = 100 * time.Millisecond

	start := time.Now()
	outcome := n.Notify(context.Background(), interestedLead())
	assert.Equal(t, domain.NotifyOutcome{}, outcome)
	assert.Less(t, time.Since(start), 1500*time.Millisecond)
}

func TestTestChat(t *testing.T) {
	var hits int32
	var req recordedRequest
	chat := newRecorder(t, http.StatusOK, &hits, &req)

	require.NoError(t, newTestNotifier(chat.URL, "").TestChat(context.Background()))
	assert.Contains(t, string(req.body), "connectivity test")
	assert.ErrorIs(t, newTestNotifier("", "").TestChat(context.Background()), ErrChannelNotConfigured)
}

func TestNewLeadID(t *testing.T) {
	id := newLeadID()
	assert.Len(t, id, 8)
	assert.Equal(t, strings.ToUpper(id), id)
}

func TestBuildLeadMessage_Preview(t *testing.T) {
	ln := &domain.LeadNotification{
		Message: &domain.NormalizedMessage{Subject: "Pricing", Body: strings.Repeat("a", chatPreviewRunes+50)},
		Result:  &domain.ClassificationResult{Category: domain.CategoryInterested, Method: domain.MethodRule},
	}
	msg := buildLeadMessage(ln, "ABCD1234", "http://dash.local/")

	require.NotNil(t, msg.Blocks)
	require.Len(t, msg.Blocks.BlockSet, 8)
	section, ok := msg.Blocks.BlockSet[4].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "*Preview:*\n```"+strings.Repeat("a", chatPreviewRunes)+"...```", section.Text.Text)
	assert.Equal(t, chatHeader+" - Pricing", msg.Text)
}
