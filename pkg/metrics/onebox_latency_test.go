package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatencyTracker_Percentiles(t *testing.T) {
	lt := NewLatencyTracker(100)
	for i := 1; i <= 100; i++ {
		lt.Record(time.Duration(i) * time.Millisecond)
	}

	s := lt.Stats()
	assert.Equal(t, 100, s.Count)
	assert.InDelta(t, 50, s.P50Ms, 1)
	assert.InDelta(t, 95, s.P95Ms, 1)
	assert.InDelta(t, 100, s.MaxMs, 0.001)
}

func TestLatencyTracker_SlidingWindow(t *testing.T) {
	lt := NewLatencyTracker(10)
	for i := 0; i < 25; i++ {
		lt.Record(time.Millisecond)
	}
	assert.LessOrEqual(t, lt.Stats().Count, 10)
}

func TestLatencyRegistry(t *testing.T) {
	r := NewLatencyRegistry(10)
	r.Record("classify", 2*time.Millisecond)
	r.Record("suggest_reply", 4*time.Millisecond)

	all := r.AllStats()
	assert.Len(t, all, 2)
	assert.Equal(t, 1, all["classify"].Count)
	assert.Zero(t, NewLatencyTracker(0).Stats().Count)
}
