package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/go-gota/gota/dataframe"

	"github.com/couchcryptid/sightings-etl/internal/domain"
	"github.com/couchcryptid/sightings-etl/internal/observability"
)

// Loader reads the raw sightings table.
type Loader interface {
	Load(ctx context.Context) (dataframe.DataFrame, error)
}

// Publisher writes a batch of cleaned sightings to a downstream system.
type Publisher interface {
	PublishBatch(ctx context.Context, sightings []domain.Sighting) error
}

// Exporter writes a finished report to a file or other sink.
type Exporter interface {
	Export(ctx context.Context, report *domain.Report) error
}

// Options tunes the sinks of a Pipeline. Zero values select defaults.
type Options struct {
	Publisher   Publisher // nil disables publishing
	Exporters   []Exporter
	BatchSize   int // sightings per published batch, default 50
	MaxAttempts int // publish attempts per batch, default 5

	// InitialBackoff is the first retry delay; it doubles up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 200 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 5 * time.Second
	}
	return o
}

// Pipeline orchestrates one load-clean-publish run.
type Pipeline struct {
	loader  Loader
	cleaner *Cleaner
	logger  *slog.Logger
	metrics *observability.Metrics
	opts    Options

	result atomic.Pointer[domain.Report]
	ready  atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(loader Loader, cleaner *Cleaner, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		loader:  loader,
		cleaner: cleaner,
		logger:  logger,
		metrics: metrics,
		opts:    opts.withDefaults(),
	}
}

// CheckReadiness returns nil once a run has completed, or an error describing
// why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Result returns the report of the completed run, or nil before that.
func (p *Pipeline) Result() *domain.Report {
	if !p.ready.Load() {
		return nil
	}
	return p.result.Load()
}

// Run loads and cleans the input, builds the views and hands the result to
// the configured sinks. Load and schema failures are returned; sink failures
// are logged and counted and do not discard the result.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"batch_size", p.opts.BatchSize,
		"publisher", p.opts.Publisher != nil,
		"exporters", len(p.opts.Exporters),
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)
	start := time.Now()

	raw, err := p.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}
	p.metrics.RowsLoaded.Add(float64(raw.Nrow()))
	p.logger.Info("input loaded", "rows", raw.Nrow(), "columns", raw.Ncol())

	cleaned, err := p.cleaner.Clean(ctx, raw)
	if err != nil {
		return fmt.Errorf("clean input: %w", err)
	}

	sightings, err := domain.ToSightings(cleaned.Table)
	if err != nil {
		return fmt.Errorf("convert sightings: %w", err)
	}

	views, warnings := domain.BuildViews(sightings)
	for _, w := range warnings {
		p.logger.Warn("aggregate warning", "error", w)
	}

	report := &domain.Report{
		Cleaned:     cleaned,
		Sightings:   sightings,
		Views:       views,
		GeneratedAt: domain.Now().UTC(),
	}
	p.result.Store(report)

	if p.opts.Publisher != nil {
		if err := p.publish(ctx, sightings); err != nil {
			p.logger.Error("publish sightings failed", "error", err)
		}
	}
	for _, e := range p.opts.Exporters {
		if err := e.Export(ctx, report); err != nil {
			p.logger.Error("export failed", "error", err)
		}
	}

	if ctx.Err() != nil {
		p.logger.Info("pipeline stopping", "reason", ctx.Err())
		return nil
	}

	p.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Info("pipeline completed",
		"sightings", len(sightings),
		"states", len(views.States),
		"duration", time.Since(start),
	)
	return nil
}

// publish sends sightings in batches. It stops at the first batch that fails
// every attempt.
func (p *Pipeline) publish(ctx context.Context, sightings []domain.Sighting) error {
	published := 0
	for start := 0; start < len(sightings); start += p.opts.BatchSize {
		end := min(start+p.opts.BatchSize, len(sightings))
		if err := p.publishBatch(ctx, sightings[start:end]); err != nil {
			return fmt.Errorf("publish sightings (%d of %d sent): %w", published, len(sightings), err)
		}
		published = end
	}
	p.logger.Info("sightings published", "count", published)
	return nil
}

// publishBatch retries one batch with exponential backoff.
func (p *Pipeline) publishBatch(ctx context.Context, batch []domain.Sighting) error {
	backoff := p.opts.InitialBackoff
	for attempt := 1; ; attempt++ {
		err := p.opts.Publisher.PublishBatch(ctx, batch)
		if err == nil {
			p.metrics.SightingsPublished.Add(float64(len(batch)))
			p.metrics.PublishBatchSize.Observe(float64(len(batch)))
			return nil
		}
		p.metrics.PublishErrors.Inc()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt >= p.opts.MaxAttempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}
		p.logger.Warn("publish batch failed, retrying",
			"error", err,
			"attempt", attempt,
			"batch_size", len(batch),
			"backoff", backoff,
		)
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, p.opts.MaxBackoff)
	}
}
