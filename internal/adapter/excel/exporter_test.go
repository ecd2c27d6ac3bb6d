package excel

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/sightings-etl/internal/domain"
)

func date(s string) *time.Time {
	t, _ := time.Parse(domain.DateLayout, s)
	return &t
}

func testReport() *domain.Report {
	sightings := []domain.Sighting{
		{ID: "a1", Summary: "Bright light", City: "Austin", State: "TX", Shape: "light",
			Duration: "5 minutes", Latitude: 30.2672, Longitude: -97.7431, Date: date("2015-06-01")},
		{ID: "b2", Summary: "Orange orb", City: "Dallas", State: "TX", Shape: "fireball",
			Duration: "2 minutes", Latitude: 32.7767, Longitude: -96.797, Date: date("2016-07-04")},
		{ID: "c3", Summary: "Disk", City: "Salem", State: "OR", Shape: "light",
			Duration: "1 hour", Latitude: 44.9429, Longitude: -123.0351},
	}
	views, _ := domain.BuildViews(sightings)
	return &domain.Report{
		Sightings: sightings,
		Views:     views,
		Cleaned: domain.Cleaned{
			Before: domain.MissingReport{Rows: 5, Columns: 10, Entries: []domain.MissingColumn{
				{Column: "latitude", Missing: 2, Percent: 40, Type: "float"},
				{Column: "shape", Missing: 1, Percent: 20, Type: "string"},
			}},
			After: domain.MissingReport{Rows: 3, Columns: 10, Entries: []domain.MissingColumn{}},
		},
	}
}

func exportAndOpen(t *testing.T, report *domain.Report) *excelize.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.xlsx")
	exp := NewExporter(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, exp.Export(context.Background(), report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestExporter_Sheets(t *testing.T) {
	f := exportAndOpen(t, testReport())

	assert.Equal(t, []string{
		SheetSightings, SheetStates, SheetStateYears, SheetShapes, SheetMissingBefore, SheetMissingAfter,
	}, f.GetSheetList())
}

func TestExporter_Contents(t *testing.T) {
	f := exportAndOpen(t, testReport())

	tests := []struct {
		sheet string
		want  [][]string
	}{
		{SheetStates, [][]string{{"state", "count"}, {"TX", "2"}, {"OR", "1"}}},
		{SheetStateYears, [][]string{{"state", "year", "count"}, {"TX", "2015", "1"}, {"TX", "2016", "1"}}},
		{SheetShapes, [][]string{{"shape", "count"}, {"light", "2"}, {"fireball", "1"}}},
		{SheetMissingBefore, [][]string{
			{"column", "missing", "percent", "type"},
			{"latitude", "2", "40", "float"},
			{"shape", "1", "20", "string"},
		}},
		{SheetMissingAfter, [][]string{{"column", "missing", "percent", "type"}}},
	}

	for _, tt := range tests {
		t.Run(tt.sheet, func(t *testing.T) {
			rows, err := f.GetRows(tt.sheet)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}

	t.Run(SheetSightings, func(t *testing.T) {
		rows, err := f.GetRows(SheetSightings)
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, []string{"id", "summary", "city", "state", "date", "shape", "duration", "latitude", "longitude"}, rows[0])
		assert.Equal(t, []string{"a1", "Bright light", "Austin", "TX", "2015-06-01", "light", "5 minutes", "30.2672", "-97.7431"}, rows[1])
		assert.Empty(t, rows[3][4], "undated sighting leaves the date cell blank")
	})
}

func TestExporter_EmptyReport(t *testing.T) {
	f := exportAndOpen(t, &domain.Report{})

	rows, err := f.GetRows(SheetSightings)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestExporter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "report.xlsx")
	err := NewExporter(path, slog.New(slog.NewTextHandler(io.Discard, nil))).Export(ctx, testReport())
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, path)
}
