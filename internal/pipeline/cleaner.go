package pipeline

import (
	"context"
	"log/slog"

	"github.com/go-gota/gota/dataframe"

	"github.com/couchcryptid/sightings-etl/internal/domain"
	"github.com/couchcryptid/sightings-etl/internal/observability"
)

// Cleaner runs domain.Clean with optional coordinate backfill and reports
// what each step did.
type Cleaner struct {
	rules    domain.Rules
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewCleaner creates a Cleaner. Pass a nil geocoder to disable coordinate
// backfill.
func NewCleaner(rules domain.Rules, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Cleaner {
	return &Cleaner{
		rules:    rules,
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
}

// Clean cleans raw and records its statistics. The context only bounds
// geocoding; the cleaning steps themselves are not interruptible.
func (c *Cleaner) Clean(ctx context.Context, raw dataframe.DataFrame) (domain.Cleaned, error) {
	var backfill domain.Backfiller
	if c.geocoder != nil {
		backfill = func(df dataframe.DataFrame) (dataframe.DataFrame, int) {
			return domain.BackfillCoordinates(ctx, df, c.geocoder, c.logger)
		}
	}

	cleaned, err := domain.Clean(raw, c.rules, backfill)
	if err != nil {
		return domain.Cleaned{}, err
	}
	c.record(cleaned)
	return cleaned, nil
}

func (c *Cleaner) record(cleaned domain.Cleaned) {
	stats := cleaned.Stats

	for step, n := range stats.Dropped {
		c.metrics.RowsDropped.WithLabelValues(step).Add(float64(n))
	}
	for col, n := range stats.Imputed {
		c.metrics.ValuesImputed.WithLabelValues(col).Add(float64(n))
	}
	for _, f := range stats.ParseFailures {
		c.metrics.ParseFailures.WithLabelValues(f.Column).Inc()
		c.logger.Warn("value could not be parsed, treated as missing",
			"column", f.Column,
			"row", f.Row,
			"value", f.Value,
		)
	}
	c.metrics.RowsCleaned.Set(float64(stats.RowsOut))

	for _, e := range cleaned.Before.Entries {
		c.logger.Debug("missing values before cleaning",
			"column", e.Column, "missing", e.Missing, "percent", e.Percent, "type", e.Type)
	}
	for _, e := range cleaned.After.Entries {
		c.logger.Debug("missing values after imputation",
			"column", e.Column, "missing", e.Missing, "percent", e.Percent, "type", e.Type)
	}
	for _, w := range cleaned.Warnings {
		c.logger.Warn("cleaning warning", "error", w)
	}

	c.logger.Info("table cleaned",
		"rows_in", stats.RowsIn,
		"rows_out", stats.RowsOut,
		"dropped_geo", stats.Dropped[domain.StepGeo],
		"dropped_date_time", stats.Dropped[domain.StepDateTime],
		"dropped_incomplete", stats.Dropped[domain.StepIncomplete],
		"imputed_duration", stats.Imputed[domain.ColDuration],
		"imputed_shape", stats.Imputed[domain.ColShape],
		"duration_mode", stats.DurationMode,
		"backfilled", stats.Backfilled,
		"parse_failures", len(stats.ParseFailures),
	)
}
