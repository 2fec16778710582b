package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/bike-rental-report/internal/domain"
	"github.com/couchcryptid/bike-rental-report/internal/observability"
	"github.com/couchcryptid/bike-rental-report/internal/report"
)

// Extractor reads every raw row from the source.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.RawRecord, error)
}

// Builder normalizes raw rows into an immutable dataset.
type Builder interface {
	Build(raws []domain.RawRecord) (*report.Dataset, error)
}

// Publisher ships a summary snapshot downstream.
type Publisher interface {
	Publish(ctx context.Context, summary report.Summary) error
}

const (
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
	defaultMaxAttempts    = 4
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBackoff overrides the retry schedule used for extract and publish.
func WithBackoff(initial, maxBackoff time.Duration, maxAttempts int) Option {
	return func(p *Pipeline) {
		p.initialBackoff = initial
		p.maxBackoff = maxBackoff
		p.maxAttempts = maxAttempts
	}
}

// Pipeline orchestrates the extract-normalize-publish load.
type Pipeline struct {
	extractor Extractor
	builder   Builder
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	ready   atomic.Bool
	dataset atomic.Pointer[report.Dataset]

	initialBackoff time.Duration
	maxBackoff     time.Duration
	maxAttempts    int
}

// New creates a Pipeline. Pass a nil publisher to skip summary publishing.
func New(e Extractor, b Builder, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:      e,
		builder:        b,
		publisher:      pub,
		logger:         logger,
		metrics:        metrics,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
		maxAttempts:    defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once a dataset has been loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}

// Dataset returns the loaded dataset, or nil before Run succeeds.
func (p *Pipeline) Dataset() *report.Dataset {
	return p.dataset.Load()
}

// Run loads the dataset once. Extract failures are retried with exponential
// backoff; a normalization failure aborts the load with no dataset. Publish
// failures are logged and counted but do not fail the load.
func (p *Pipeline) Run(ctx context.Context) (*report.Dataset, error) {
	start := time.Now()
	p.logger.Info("dataset load started")

	var raws []domain.RawRecord
	err := p.retry(ctx, "extract", func() error {
		var err error
		raws, err = p.extractor.Extract(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.metrics.RowsExtracted.Add(float64(len(raws)))

	ds, err := p.builder.Build(raws)
	if err != nil {
		p.metrics.NormalizeErrors.WithLabelValues(normalizeErrorReason(err)).Inc()
		p.logger.Error("normalization failed, dataset rejected", "error", err, "rows", len(raws))
		return nil, err
	}

	p.dataset.Store(ds)
	p.ready.Store(true)
	p.metrics.DatasetRecords.Set(float64(ds.Len()))
	p.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("dataset loaded", "records", ds.Len(), "duration", time.Since(start))

	if p.publisher != nil {
		p.publish(ctx, ds)
	}
	return ds, nil
}

func (p *Pipeline) publish(ctx context.Context, ds *report.Dataset) {
	summary := report.Summarize(ds, report.FilterSpec{})
	err := p.retry(ctx, "publish", func() error {
		return p.publisher.Publish(ctx, summary)
	})
	if err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Error("summary publish failed", "error", err)
		return
	}
	p.metrics.SummariesPublished.Inc()
	p.logger.Info("summary published", "records", summary.Records)
}

// retry runs fn up to maxAttempts times, sleeping with exponential backoff
// between attempts. It gives up early when ctx is cancelled.
func (p *Pipeline) retry(ctx context.Context, stage string, fn func() error) error {
	backoff := p.initialBackoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Warn(stage+" failed", "error", err, "attempt", attempt, "max_attempts", p.maxAttempts)
		if attempt == p.maxAttempts {
			break
		}
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, p.maxBackoff)
	}
	return err
}

func normalizeErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnmappedCode):
		return "unmapped_code"
	case errors.Is(err, domain.ErrInvalidField):
		return "invalid_field"
	default:
		return "other"
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
