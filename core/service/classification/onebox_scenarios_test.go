package classification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/service/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// End-to-end decisions with no model credential configured.
func TestOrchestrator_EndToEnd(t *testing.T) {
	tests := []struct {
		name       string
		msg        *domain.NormalizedMessage
		category   domain.Category
		method     domain.ClassificationMethod
		confidence float64
	}{
		{
			name: "out of office",
			msg: &domain.NormalizedMessage{
				Subject: "Out of Office: Vacation until Monday",
				Body:    "I am currently out of office and will return on Monday.",
			},
			category:   domain.CategoryOutOfOffice,
			method:     domain.MethodRule,
			confidence: domain.RuleConfidence,
		},
		{
			name: "spam",
			msg: &domain.NormalizedMessage{
				Subject: "🎉 WIN $1000 NOW!!!",
				Sender:  "spam@fake.com",
				Body:    "Click here to win amazing prizes!",
			},
			category:   domain.CategorySpam,
			method:     domain.MethodRule,
			confidence: domain.RuleConfidence,
		},
		{
			name: "interested lead",
			msg: &domain.NormalizedMessage{
				Subject: "Interested in your AI solution",
				Body:    "Hi, I saw your demo and I'm very interested. Can you send me pricing information?",
			},
			category:   domain.CategoryInterested,
			method:     domain.MethodRule,
			confidence: domain.RuleConfidence,
		},
		{
			name: "no rule and no model",
			msg: &domain.NormalizedMessage{
				Subject: "Weekly status update",
				Sender:  "ops@example.com",
				Body:    "The server migration finished overnight and all checks passed.",
			},
			category:   domain.CategoryUncategorized,
			method:     domain.MethodFailed,
			confidence: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrchestrator(nil, &fakeNotifier{}, false)
			res := o.Classify(context.Background(), tt.msg)

			assert.Equal(t, tt.category, res.Category)
			assert.Equal(t, tt.method, res.Method)
			assert.Equal(t, tt.confidence, res.Confidence)
		})
	}
}

func TestOrchestrator_InterestedLeadReachesBothChannels(t *testing.T) {
	var chatHits, hookHits int32
	server := func(hits *int32) *httptest.Server {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(hits, 1)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		}))
		t.Cleanup(srv.Close)
		return srv
	}
	chat, hook := server(&chatHits), server(&hookHits)

	notifier := notification.NewNotifier(notification.Config{
		SlackWebhookURL:      chat.URL,
		AutomationWebhookURL: hook.URL,
		DashboardURL:         "http://dash.local",
		Timeout:              2 * time.Second,
	})
	o := NewOrchestrator(NewRuleMatcher(), nil, notifier, nil, OrchestratorConfig{NotifyInline: true})

	res := o.Classify(context.Background(), &domain.NormalizedMessage{
		Subject: "Interested in your AI solution",
		Sender:  "lead@prospect.io",
		Body:    "Hi, I saw your demo and I'm very interested. Can you send me pricing information?",
	})
	require.Equal(t, domain.CategoryInterested, res.Category)
	assert.EqualValues(t, 1, atomic.LoadInt32(&chatHits))
	assert.EqualValues(t, 1, atomic.LoadInt32(&hookHits))

	o.Classify(context.Background(), &domain.NormalizedMessage{
		Subject: "Out of Office: Vacation until Monday",
		Body:    "I am currently out of office and will return on Monday.",
	})
	assert.EqualValues(t, 1, atomic.LoadInt32(&chatHits), "non-interested messages do not alert")
	assert.EqualValues(t, 1, atomic.LoadInt32(&hookHits))
}
