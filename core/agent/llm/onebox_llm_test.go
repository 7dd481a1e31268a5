package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/18vikastg/onebox/core/domain"

	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		maxLen   int
		expected string
	}{
		{"short body", "Hello world", 100, "Hello world"},
		{"exact length", "Hello", 5, "Hello"},
		{"truncated", "Hello world, this is a long message", 10, "Hello worl..."},
		{"multibyte", "héllo wörld", 4, "héll..."},
		{"empty body", "", 100, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateBody(tt.body, tt.maxLen))
		})
	}
}

// fakeOpenAI records chat requests and answers with a fixed completion.
type fakeOpenAI struct {
	answer   string
	status   int
	requests []openai.ChatCompletionRequest
}

func (f *fakeOpenAI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if f.status != 0 {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			var req openai.ChatCompletionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			f.requests = append(f.requests, req)
			_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{
					{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.answer}},
				},
				Usage: openai.Usage{PromptTokens: 100, CompletionTokens: 3},
			})
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			_ = json.NewEncoder(w).Encode(openai.EmbeddingResponse{
				Data: []openai.Embedding{
					{Index: 1, Embedding: []float32{0, 1}},
					{Index: 0, Embedding: []float32{1, 0}},
				},
				Usage: openai.Usage{PromptTokens: 8},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestClient(t *testing.T, f *fakeOpenAI) *Client {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewClientWithConfig(ClientConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
		Timeout: 2 * time.Second,
	})
}

func TestClassifyLabel_RequestShape(t *testing.T) {
	f := &fakeOpenAI{answer: "  Interested \n"}
	c := newTestClient(t, f)

	body := strings.Repeat("a", 4000)
	label, err := c.ClassifyLabel(context.Background(), &domain.NormalizedMessage{
		Subject: "Pricing", Sender: "lead@acme.io", Body: body,
	})
	require.NoError(t, err)
	assert.Equal(t, "Interested", label)

	require.Len(t, f.requests, 1)
	req := f.requests[0]
	assert.Equal(t, DefaultModel, req.Model)
	assert.Equal(t, 20, req.MaxTokens)
	assert.InDelta(t, 0.1, req.Temperature, 1e-6)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, classifySystemPrompt, req.Messages[0].Content)
	assert.Contains(t, req.Messages[1].Content, strings.Repeat("a", 1500)+"...")
	assert.NotContains(t, req.Messages[1].Content, strings.Repeat("a", 1501))

	stats := c.Usage().Stats()
	assert.Equal(t, int64(103), stats.TokensByPurpose["classify"])
}

func TestClassifyLabel_EmptyAnswer(t *testing.T) {
	c := newTestClient(t, &fakeOpenAI{answer: "   "})
	_, err := c.ClassifyLabel(context.Background(), &domain.NormalizedMessage{})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestClassifyLabel_ServerError(t *testing.T) {
	c := newTestClient(t, &fakeOpenAI{status: http.StatusInternalServerError})
	_, err := c.ClassifyLabel(context.Background(), &domain.NormalizedMessage{Body: "hi"})
	assert.Error(t, err)
}

func TestSynthesizeReply_PromptCarriesExemplarsAndUser(t *testing.T) {
	f := &fakeOpenAI{answer: "Thanks, happy to chat."}
	c := newTestClient(t, f)

	exemplars := []domain.SimilarityMatch{
		{Entry: domain.ReplyTemplateEntry{ScenarioID: "first", TemplateBody: "T1"}, Similarity: 0.9},
		{Entry: domain.ReplyTemplateEntry{ScenarioID: "second", TemplateBody: "T2"}, Similarity: 0.8},
		{Entry: domain.ReplyTemplateEntry{ScenarioID: "third", TemplateBody: "T3"}, Similarity: 0.7},
	}
	out, err := c.SynthesizeReply(context.Background(),
		&domain.ReplyRequest{Body: "Can we talk?", Sender: "a@b.c", Subject: "Hi"},
		exemplars,
		domain.UserContext{Name: "Ada", CalendarLink: "https://cal.example/ada"},
	)
	require.NoError(t, err)
	assert.Equal(t, "Thanks, happy to chat.", out)

	require.Len(t, f.requests, 1)
	req := f.requests[0]
	assert.Equal(t, 300, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	prompt := req.Messages[0].Content
	assert.Contains(t, prompt, "Scenario: first")
	assert.Contains(t, prompt, "Scenario: second")
	assert.NotContains(t, prompt, "Scenario: third")
	assert.Contains(t, prompt, "https://cal.example/ada")
	assert.Contains(t, prompt, "150 words")
}

func TestEmbeddingBatch_OrdersByIndex(t *testing.T) {
	c := newTestClient(t, &fakeOpenAI{})
	vecs, err := c.EmbeddingBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}

func TestCalculateCost(t *testing.T) {
	assert.InDelta(t, 0.15+0.60, CalculateCost("gpt-4o-mini", 1_000_000, 1_000_000), 1e-9)
	assert.Zero(t, CalculateCost("unknown", 10, 10))
}
