package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/sightings-etl/internal/domain"
)

// CSVExporter writes the cleaned table of a report to a CSV file.
type CSVExporter struct {
	path   string
	logger *slog.Logger
}

// NewCSVExporter creates an exporter writing to path.
func NewCSVExporter(path string, logger *slog.Logger) *CSVExporter {
	return &CSVExporter{path: path, logger: logger}
}

// Export writes the cleaned table with a header row. The file is replaced.
func (e *CSVExporter) Export(ctx context.Context, report *domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("create csv export: %w", err)
	}
	if err := report.Cleaned.Table.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write csv export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv export: %w", err)
	}

	e.logger.Info("cleaned table exported", "path", e.path, "rows", report.Cleaned.Table.Nrow())
	return nil
}
