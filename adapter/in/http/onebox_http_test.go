package http

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/18vikastg/onebox/core/agent/rag"
	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/core/service/notification"
	"github.com/18vikastg/onebox/infra/middleware"
	"github.com/18vikastg/onebox/pkg/apperr"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeClassifier struct {
	mu       sync.Mutex
	seen     []*domain.NormalizedMessage
	notified int
}

func (f *fakeClassifier) Classify(_ context.Context, msg *domain.NormalizedMessage) *domain.ClassificationResult {
	f.mu.Lock()
	f.seen = append(f.seen, msg)
	f.mu.Unlock()
	if strings.Contains(strings.ToLower(msg.Body), "interested") {
		return &domain.ClassificationResult{Category: domain.CategoryInterested, Confidence: domain.RuleConfidence, Method: domain.MethodRule}
	}
	return &domain.ClassificationResult{Category: domain.CategorySpam, Confidence: domain.LLMConfidence, Method: domain.MethodLLM}
}

func (f *fakeClassifier) ClassifyAndStore(ctx context.Context, msg *domain.NormalizedMessage) *domain.ClassificationRecord {
	return &domain.ClassificationRecord{ID: "rec-1", Message: msg, Result: f.Classify(ctx, msg)}
}

func (f *fakeClassifier) ClassifyBatch(ctx context.Context, msgs []*domain.NormalizedMessage) ([]*domain.ClassificationRecord, domain.BatchStats) {
	var stats domain.BatchStats
	records := make([]*domain.ClassificationRecord, 0, len(msgs))
	for i, m := range msgs {
		var res *domain.ClassificationResult
		if m == nil {
			res = domain.FailedResult(domain.ErrNilMessage, time.Now())
		} else {
			res = f.Classify(ctx, m)
		}
		stats.Record(res)
		records = append(records, &domain.ClassificationRecord{ID: fmt.Sprintf("rec-%d", i), Message: m, Result: res})
	}
	return records, stats
}

func (f *fakeClassifier) NotifyIfInterested(_ context.Context, _ *domain.NormalizedMessage, r *domain.ClassificationResult) *domain.NotifyOutcome {
	if r.Category != domain.CategoryInterested {
		return nil
	}
	f.mu.Lock()
	f.notified++
	f.mu.Unlock()
	return &domain.NotifyOutcome{ChatSent: true, WebhookSent: true}
}

type fakeReplies struct {
	added    []domain.ReplyTemplateEntry
	userTmpl []string
	addErr   error
}

func (f *fakeReplies) Suggest(_ context.Context, req *domain.ReplyRequest) *domain.ReplySuggestion {
	return &domain.ReplySuggestion{
		Success:        true,
		SuggestionText: "Reply to: " + req.Body,
		Confidence:     0.7,
		Method:         domain.ReplyMethodTemplate,
	}
}

func (f *fakeReplies) AddTemplates(_ context.Context, entries []domain.ReplyTemplateEntry) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, entries...)
	return nil
}

func (f *fakeReplies) AddUserTemplate(_ context.Context, scenario, _, _, _ string) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.userTmpl = append(f.userTmpl, scenario)
	return nil
}

func (f *fakeReplies) Stats(context.Context) (*domain.TemplateLibraryStats, error) {
	return &domain.TemplateLibraryStats{TotalTemplates: 16 + len(f.added), EmbeddingProvider: "local-hash"}, nil
}

type fakeJobs struct {
	err   error
	kinds []string
}

func (f *fakeJobs) PublishClassify(context.Context, *domain.NormalizedMessage) (string, error) {
	f.kinds = append(f.kinds, "classify")
	return "job-1", f.err
}

func (f *fakeJobs) PublishClassifyBatch(_ context.Context, msgs []domain.NormalizedMessage) (string, error) {
	f.kinds = append(f.kinds, fmt.Sprintf("batch:%d", len(msgs)))
	return "job-2", f.err
}

func (f *fakeJobs) PublishSuggestReply(context.Context, *domain.NormalizedMessage) (string, error) {
	f.kinds = append(f.kinds, "suggest")
	return "job-3", f.err
}

type fakeTester struct{ err error }

func (f fakeTester) TestChat(context.Context) error { return f.err }

type fakeCounter map[string]int

func (f fakeCounter) CountByCategory(context.Context) (map[string]int, error) { return f, nil }

type fakeRanking struct{ gotCategory string }

func (f *fakeRanking) TopSenders(_ context.Context, category string, limit int) ([]out.SenderCount, error) {
	f.gotCategory = category
	return []out.SenderCount{{Address: "lead@acme.com", Count: int64(limit)}}, nil
}

// =============================================================================
// Helpers
// =============================================================================

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newApp(register func(r fiber.Router)) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestID())
	register(app.Group("/api/v1"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

// =============================================================================
// Classify
// =============================================================================

func TestClassifyHandler_Classify(t *testing.T) {
	svc := &fakeClassifier{}
	app := newApp(NewClassifyHandler(svc, nil, false).Register)

	code, env := do(t, app, "POST", "/api/v1/classify",
		`{"subject":"Re: demo","sender":"a@b.com","body":"<p>I am <b>interested</b></p>"}`)
	require.Equal(t, 200, code)
	assert.True(t, env.Success)

	var got classifyResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "rec-1", got.ID)
	assert.Equal(t, domain.CategoryInterested, got.Result.Category)
	assert.Nil(t, got.Notification)

	require.Len(t, svc.seen, 1)
	assert.Equal(t, "I am interested", svc.seen[0].Body)
}

func TestClassifyHandler_NotifyAfter(t *testing.T) {
	svc := &fakeClassifier{}
	app := newApp(NewClassifyHandler(svc, nil, true).Register)

	_, env := do(t, app, "POST", "/api/v1/classify", `{"subject":"hi","sender":"a@b.com","body":"interested!"}`)
	var got classifyResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.NotNil(t, got.Notification)
	assert.True(t, got.Notification.ChatSent)
	assert.Equal(t, 1, svc.notified)
}

func TestClassifyHandler_BadRequests(t *testing.T) {
	app := newApp(NewClassifyHandler(&fakeClassifier{}, nil, false).Register)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"empty body", "/api/v1/classify", "", 400, apperr.CodeBadRequest},
		{"malformed json", "/api/v1/classify", "{", 400, apperr.CodeBadRequest},
		{"empty batch", "/api/v1/classify/batch", `{"messages":[]}`, 400, apperr.CodeMissingField},
		{"queue not configured", "/api/v1/jobs/classify", `{"body":"x"}`, 503, apperr.CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, app, "POST", tt.path, tt.body)
			assert.Equal(t, tt.wantCode, code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantErr, env.Error.Code)
		})
	}
}

func TestClassifyHandler_BatchTooLarge(t *testing.T) {
	app := newApp(NewClassifyHandler(&fakeClassifier{}, nil, false).Register)

	msgs := make([]string, MaxBatchSize+1)
	for i := range msgs {
		msgs[i] = `{"body":"x"}`
	}
	code, env := do(t, app, "POST", "/api/v1/classify/batch", `{"messages":[`+strings.Join(msgs, ",")+`]}`)
	assert.Equal(t, 422, code)
	assert.Equal(t, apperr.CodeValidationFailed, env.Error.Code)
}

func TestClassifyHandler_Batch(t *testing.T) {
	app := newApp(NewClassifyHandler(&fakeClassifier{}, nil, false).Register)

	code, env := do(t, app, "POST", "/api/v1/classify/batch",
		`{"messages":[{"body":"interested"},null,{"body":"buy now"}]}`)
	require.Equal(t, 200, code)

	var got batchResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got.Records, 3)
	assert.Equal(t, domain.BatchStats{Total: 3, Rule: 1, LLM: 1, Failed: 1, Interested: 1}, got.Stats)
	assert.Equal(t, domain.MethodFailed, got.Records[1].Result.Method)
}

func TestClassifyHandler_Jobs(t *testing.T) {
	jobs := &fakeJobs{}
	app := newApp(NewClassifyHandler(&fakeClassifier{}, jobs, false).Register)

	code, env := do(t, app, "POST", "/api/v1/jobs/classify", `{"body":"hello"}`)
	assert.Equal(t, 202, code)
	assert.JSONEq(t, `{"job_id":"job-1"}`, string(env.Data))

	code, _ = do(t, app, "POST", "/api/v1/jobs/classify/batch", `{"messages":[{"body":"a"},{"body":"b"}]}`)
	assert.Equal(t, 202, code)

	code, _ = do(t, app, "POST", "/api/v1/jobs/suggest-reply", `{"body":"hello"}`)
	assert.Equal(t, 202, code)

	assert.Equal(t, []string{"classify", "batch:2", "suggest"}, jobs.kinds)

	code, env = do(t, app, "POST", "/api/v1/jobs/classify/batch", `{"messages":[{"body":"a"},null]}`)
	assert.Equal(t, 400, code)
	assert.Equal(t, apperr.CodeInvalidInput, env.Error.Code)
}

func TestClassifyHandler_JobQueueFailure(t *testing.T) {
	app := newApp(NewClassifyHandler(&fakeClassifier{}, &fakeJobs{err: errors.New("redis down")}, false).Register)

	code, env := do(t, app, "POST", "/api/v1/jobs/classify", `{"body":"hello"}`)
	assert.Equal(t, 502, code)
	assert.Equal(t, apperr.CodeExternalError, env.Error.Code)
}

// =============================================================================
// Replies & templates
// =============================================================================

func TestReplyHandler_Suggest(t *testing.T) {
	app := newApp(NewReplyHandler(&fakeReplies{}).Register)

	code, env := do(t, app, "POST", "/api/v1/replies/suggest", `{"body":"Can we schedule an interview?","sender":"hr@co.com"}`)
	require.Equal(t, 200, code)

	var got domain.ReplySuggestion
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.Success)
	assert.Equal(t, domain.ReplyMethodTemplate, got.Method)

	code, env = do(t, app, "POST", "/api/v1/replies/suggest", `{"body":"  "}`)
	assert.Equal(t, 400, code)
	assert.Equal(t, apperr.CodeMissingField, env.Error.Code)
}

func TestReplyHandler_AddTemplates(t *testing.T) {
	svc := &fakeReplies{}
	app := newApp(NewReplyHandler(svc).Register)

	code, env := do(t, app, "POST", "/api/v1/templates",
		`{"templates":[{"scenario_id":"pricing","pattern_text":"what does it cost","template_body":"Hi {name}"}]}`)
	assert.Equal(t, 201, code)
	assert.JSONEq(t, `{"added":1}`, string(env.Data))
	require.Len(t, svc.added, 1)

	code, _ = do(t, app, "POST", "/api/v1/templates",
		`{"scenario":"visa","pattern":"do you sponsor visas","reply":"Yes, {name}"}`)
	assert.Equal(t, 201, code)
	assert.Equal(t, []string{"visa"}, svc.userTmpl)

	code, env = do(t, app, "POST", "/api/v1/templates", `{}`)
	assert.Equal(t, 400, code)
	assert.Equal(t, apperr.CodeMissingField, env.Error.Code)
}

func TestReplyHandler_TemplateErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"duplicate", fmt.Errorf("x: %w", rag.ErrDuplicateScenario), 409},
		{"invalid", fmt.Errorf("%w: scenario_id is required", rag.ErrInvalidTemplate), 422},
		{"placeholder", fmt.Errorf("x: %w", rag.ErrUnknownPlaceholder), 422},
		{"store", errors.New("disk full"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(NewReplyHandler(&fakeReplies{addErr: tt.err}).Register)
			code, _ := do(t, app, "POST", "/api/v1/templates", `{"scenario":"s","pattern":"p","reply":"r"}`)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestReplyHandler_Stats(t *testing.T) {
	app := newApp(NewReplyHandler(&fakeReplies{}).Register)

	code, env := do(t, app, "GET", "/api/v1/templates/stats", "")
	require.Equal(t, 200, code)

	var got domain.TemplateLibraryStats
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 16, got.TotalTemplates)
	assert.Equal(t, "local-hash", got.EmbeddingProvider)
}

// =============================================================================
// Notifications & stats
// =============================================================================

func TestNotificationHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"sent", nil, 200},
		{"not configured", fmt.Errorf("chat: %w", notification.ErrChannelNotConfigured), 503},
		{"delivery failed", errors.New("status 500"), 502},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(NewNotificationHandler(fakeTester{err: tt.err}).Register)
			code, _ := do(t, app, "POST", "/api/v1/notifications/test", "")
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestStatsHandler(t *testing.T) {
	ranking := &fakeRanking{}
	app := newApp(NewStatsHandler(fakeCounter{"Interested": 3}, ranking, nil).Register)

	code, env := do(t, app, "GET", "/api/v1/stats/categories", "")
	require.Equal(t, 200, code)
	assert.JSONEq(t, `{"Interested":3}`, string(env.Data))

	code, env = do(t, app, "GET", "/api/v1/stats/senders?category=Spam&limit=5", "")
	require.Equal(t, 200, code)
	assert.JSONEq(t, `[{"address":"lead@acme.com","count":5}]`, string(env.Data))
	assert.Equal(t, "Spam", ranking.gotCategory)

	code, _ = do(t, app, "GET", "/api/v1/stats/senders?category=Bogus", "")
	assert.Equal(t, 400, code)

	code, _ = do(t, app, "GET", "/api/v1/stats", "")
	assert.Equal(t, 200, code)
}

func TestStatsHandler_Unconfigured(t *testing.T) {
	app := newApp(NewStatsHandler(nil, nil, nil).Register)

	code, _ := do(t, app, "GET", "/api/v1/stats/categories", "")
	assert.Equal(t, 503, code)
	code, _ = do(t, app, "GET", "/api/v1/stats/senders", "")
	assert.Equal(t, 503, code)
}

// =============================================================================
// Health
// =============================================================================

func TestHealthHandler(t *testing.T) {
	app := fiber.New()
	NewHealthHandler(map[string]HealthCheck{
		"redis":  func(context.Context) error { return nil },
		"neo4j":  func(context.Context) error { return errors.New("refused") },
		"absent": nil,
	}).Register(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)

	var body struct {
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Checks["redis"])
	assert.Contains(t, body.Checks["neo4j"], "refused")
	assert.NotContains(t, body.Checks, "absent")

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
