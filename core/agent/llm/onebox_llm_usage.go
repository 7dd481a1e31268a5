package llm

import (
	"sync"
	"time"
)

// Pricing per 1M tokens
var modelPricing = map[string]struct {
	InputPer1M  float64
	OutputPer1M float64
}{
	"gpt-4o-mini":            {InputPer1M: 0.15, OutputPer1M: 0.60},
	"gpt-4o":                 {InputPer1M: 5.00, OutputPer1M: 15.00},
	"gpt-3.5-turbo":          {InputPer1M: 0.50, OutputPer1M: 1.50},
	"text-embedding-3-small": {InputPer1M: 0.02},
}

// CalculateCost estimates the cost of a call; unknown models cost 0.
func CalculateCost(model string, promptTokens, completionTokens int) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	return float64(promptTokens)/1_000_000*pricing.InputPer1M +
		float64(completionTokens)/1_000_000*pricing.OutputPer1M
}

// UsageTracker accumulates token usage per purpose (classify, reply, embedding).
type UsageTracker struct {
	mu        sync.RWMutex
	totalCost float64
	requests  int64
	tokens    map[string]int64
	dailyCost map[string]float64
}

func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		tokens:    make(map[string]int64),
		dailyCost: make(map[string]float64),
	}
}

func (t *UsageTracker) Track(purpose, model string, inputTokens, outputTokens int) float64 {
	cost := CalculateCost(model, inputTokens, outputTokens)

	t.mu.Lock()
	t.totalCost += cost
	t.requests++
	t.tokens[purpose] += int64(inputTokens + outputTokens)
	t.dailyCost[time.Now().UTC().Format("2006-01-02")] += cost
	t.mu.Unlock()

	return cost
}

type UsageStats struct {
	TotalCost       float64          `json:"total_cost"`
	RequestCount    int64            `json:"request_count"`
	TokensByPurpose map[string]int64 `json:"tokens_by_purpose"`
}

func (t *UsageTracker) Stats() UsageStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tokens := make(map[string]int64, len(t.tokens))
	for k, v := range t.tokens {
		tokens[k] = v
	}
	return UsageStats{
		TotalCost:       t.totalCost,
		RequestCount:    t.requests,
		TokensByPurpose: tokens,
	}
}
