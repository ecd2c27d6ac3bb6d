// Package excel writes a pipeline report to an XLSX workbook.
package excel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/sightings-etl/internal/domain"
)

// Sheet names of the exported workbook, in order.
const (
	SheetSightings     = "sightings"
	SheetStates        = "states"
	SheetStateYears    = "state_years"
	SheetShapes        = "shapes"
	SheetMissingBefore = "missing_before"
	SheetMissingAfter  = "missing_after"
)

// Exporter writes the cleaned sightings, the aggregate views and the
// missing-value reports to one workbook.
type Exporter struct {
	path   string
	logger *slog.Logger
}

// NewExporter creates an exporter writing to path. The file is replaced on
// every export.
func NewExporter(path string, logger *slog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

// Export builds the workbook and saves it.
func (e *Exporter) Export(ctx context.Context, report *domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetSightings, sightingRows(report.Sightings)},
		{SheetStates, stateRows(report.Views.States)},
		{SheetStateYears, stateYearRows(report.Views.StateYears)},
		{SheetShapes, countRows("shape", report.Views.Shapes)},
		{SheetMissingBefore, missingRows(report.Cleaned.Before)},
		{SheetMissingAfter, missingRows(report.Cleaned.After)},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.rows); err != nil {
			return fmt.Errorf("write sheet %s: %w", s.name, err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", e.path, err)
	}

	e.logger.Info("workbook exported", "path", e.path, "sightings", len(report.Sightings))
	return nil
}

func writeSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func sightingRows(sightings []domain.Sighting) [][]any {
	rows := [][]any{{"id", domain.ColSummary, domain.ColCity, domain.ColState, domain.ColDate,
		domain.ColShape, domain.ColDuration, domain.ColLatitude, domain.ColLongitude}}
	for _, s := range sightings {
		date := ""
		if s.Date != nil {
			date = s.Date.Format(domain.DateLayout)
		}
		rows = append(rows, []any{s.ID, s.Summary, s.City, s.State, date,
			s.Shape, s.Duration, s.Latitude, s.Longitude})
	}
	return rows
}

func stateRows(states domain.StateCounts) [][]any {
	rows := [][]any{{"state", "count"}}
	for _, c := range states.Sorted() {
		rows = append(rows, []any{c.State, c.Count})
	}
	return rows
}

func stateYearRows(stateYears domain.StateYearCounts) [][]any {
	rows := [][]any{{"state", "year", "count"}}
	for _, c := range stateYears.Sorted() {
		rows = append(rows, []any{c.State, c.Year, c.Count})
	}
	return rows
}

func countRows(label string, counts domain.Counts) [][]any {
	rows := [][]any{{label, "count"}}
	for _, c := range counts.Top(0) {
		rows = append(rows, []any{c.Value, c.Count})
	}
	return rows
}

func missingRows(r domain.MissingReport) [][]any {
	rows := [][]any{{"column", "missing", "percent", "type"}}
	for _, e := range r.Entries {
		rows = append(rows, []any{e.Column, e.Missing, e.Percent, e.Type})
	}
	return rows
}
