package classification

import (
	"context"
	"errors"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/pkg/logger"
	"github.com/18vikastg/onebox/pkg/metrics"
)

// FanoutSink writes each record to every configured sink. A failing sink does not
// stop the others; their errors are joined.
type FanoutSink struct {
	sinks []out.ResultSink
}

// NewFanoutSink drops nil sinks.
func NewFanoutSink(sinks ...out.ResultSink) *FanoutSink {
	f := &FanoutSink{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

func (f *FanoutSink) Name() string { return "fanout" }

// Len returns the number of sinks.
func (f *FanoutSink) Len() int { return len(f.sinks) }

func (f *FanoutSink) Save(ctx context.Context, rec *domain.ClassificationRecord) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Save(ctx, rec); err != nil {
			metrics.ObserveSinkError(s.Name())
			logger.WithError(err).Warn("[FanoutSink] %s failed", s.Name())
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
