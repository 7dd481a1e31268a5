package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/18vikastg/onebox/pkg/httputil"
	"github.com/18vikastg/onebox/pkg/resilience"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrEmptyCompletion = errors.New("llm returned an empty completion")
	ErrEmptyEmbedding  = errors.New("llm returned no embedding")
)

type Client struct {
	client         *openai.Client
	model          string
	embeddingModel string
	timeout        time.Duration
	breaker        *resilience.Breaker
	usage          *UsageTracker

	classifyMaxTokens   int
	classifyTemperature float32
	classifyBodyLimit   int
	replyMaxTokens      int
	replyTemperature    float32
}

type ClientConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	Timeout        time.Duration

	ClassifyMaxTokens   int
	ClassifyTemperature float32
	ClassifyBodyLimit   int
	ReplyMaxTokens      int
	ReplyTemperature    float32
}

const (
	DefaultModel          = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

func NewClientWithConfig(cfg ClientConfig) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ClassifyMaxTokens == 0 {
		cfg.ClassifyMaxTokens = 20
	}
	if cfg.ClassifyTemperature == 0 {
		cfg.ClassifyTemperature = 0.1
	}
	if cfg.ClassifyBodyLimit == 0 {
		cfg.ClassifyBodyLimit = 1500
	}
	if cfg.ReplyMaxTokens == 0 {
		cfg.ReplyMaxTokens = 300
	}
	if cfg.ReplyTemperature == 0 {
		cfg.ReplyTemperature = 0.7
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = httputil.NewOptimizedClient(httputil.OpenAIClientConfig(cfg.Timeout))

	return &Client{
		client:              openai.NewClientWithConfig(oc),
		model:               cfg.Model,
		embeddingModel:      cfg.EmbeddingModel,
		timeout:             cfg.Timeout,
		breaker:             resilience.NewBreaker(resilience.DefaultBreakerConfig("openai")),
		usage:               NewUsageTracker(),
		classifyMaxTokens:   cfg.ClassifyMaxTokens,
		classifyTemperature: cfg.ClassifyTemperature,
		classifyBodyLimit:   cfg.ClassifyBodyLimit,
		replyMaxTokens:      cfg.ReplyMaxTokens,
		replyTemperature:    cfg.ReplyTemperature,
	}
}

// Usage returns the token accounting for this client.
func (c *Client) Usage() *UsageTracker {
	return c.usage
}

// completion sends one chat request. One attempt, bounded by the client timeout.
func (c *Client) completion(ctx context.Context, purpose string, req openai.ChatCompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req.Model = c.model
	resp, err := resilience.Execute(c.breaker, func() (openai.ChatCompletionResponse, error) {
		return c.client.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		return "", err
	}
	c.usage.Track(purpose, c.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

func (c *Client) Embedding(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbeddingBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *Client) EmbeddingBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := resilience.Execute(c.breaker, func() (openai.EmbeddingResponse, error) {
		return c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(c.embeddingModel),
			Input: texts,
		})
	})
	if err != nil {
		return nil, err
	}
	c.usage.Track("embedding", c.embeddingModel, resp.Usage.PromptTokens, 0)

	if len(resp.Data) != len(texts) {
		return nil, ErrEmptyEmbedding
	}
	result := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, ErrEmptyEmbedding
		}
		result[data.Index] = data.Embedding
	}
	return result, nil
}

// truncateBody cuts body to maxLen runes.
func truncateBody(body string, maxLen int) string {
	runes := []rune(body)
	if len(runes) <= maxLen {
		return body
	}
	return string(runes[:maxLen]) + "..."
}
