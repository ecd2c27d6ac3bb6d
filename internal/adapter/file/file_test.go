package file

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/sightings-etl/internal/domain"
)

const rawCSV = `summary,city,state,date_time,shape,duration,stats,posted,city_latitude,city_longitude
"Bright light, hovering",Austin,TX,2015-06-01T21:00:00,light,5 minutes,Occurred : 6/1/2015 21:00,2015-06-05T00:00:00,30.2672,-97.7431
Orange orb,Portland,OR,2016-07-04T22:30:00,NA,,Occurred : 7/4/2016 22:30,2016-07-08T00:00:00,,-122.6765
`

var rawRows = [][]string{
	{"summary", "city", "state", "shape", "city_latitude"},
	{"Bright light", "Austin", "TX", "light", "30.2672"},
	{"Orange orb", "Portland", "OR", "", ""},
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func writeXLSX(t *testing.T, sheet string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	path := filepath.Join(t.TempDir(), "reports.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoader_CSV(t *testing.T) {
	path := writeFile(t, "nuforc_reports.csv", rawCSV)

	df, err := NewLoader(path, "", discardLogger()).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, 10, df.Ncol())
	assert.Equal(t, "Bright light, hovering", df.Col(domain.ColSummary).Elem(0).String())
	assert.Equal(t, "30.2672", df.Col("city_latitude").Elem(0).String())

	t.Run("null tokens are missing", func(t *testing.T) {
		assert.True(t, df.Col(domain.ColShape).Elem(1).IsNA(), "NA")
		assert.True(t, df.Col(domain.ColDuration).Elem(1).IsNA(), "empty cell")
		assert.True(t, df.Col("city_latitude").Elem(1).IsNA())
	})

	t.Run("columns stay text", func(t *testing.T) {
		for _, typ := range df.Types() {
			assert.Equal(t, "string", string(typ))
		}
	})
}

func TestLoader_HeaderOnly(t *testing.T) {
	header := "summary,city,state,date_time,shape,duration,stats,report_link,text,posted,city_latitude,city_longitude"

	t.Run("csv", func(t *testing.T) {
		path := writeFile(t, "empty.csv", header+"\n")

		df, err := NewLoader(path, "", discardLogger()).Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, df.Nrow())
		assert.Equal(t, strings.Split(header, ","), df.Names())
	})

	t.Run("xlsx", func(t *testing.T) {
		path := writeXLSX(t, "Sheet1", rawRows[:1])

		df, err := NewLoader(path, "", discardLogger()).Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, df.Nrow())
		assert.Equal(t, rawRows[0], df.Names())
	})

	t.Run("cleans to an empty table with a warning", func(t *testing.T) {
		df, err := NewLoader(writeFile(t, "empty.csv", header+"\n"), "", discardLogger()).Load(context.Background())
		require.NoError(t, err)

		cleaned, err := domain.Clean(df, domain.DefaultRules(), nil)
		require.NoError(t, err)
		assert.Equal(t, 0, cleaned.Table.Nrow())
		require.Len(t, cleaned.Warnings, 1)
		assert.ErrorIs(t, cleaned.Warnings[0], domain.ErrEmptyResult)
	})
}

func TestLoader_EmptyFile(t *testing.T) {
	_, err := NewLoader(writeFile(t, "blank.csv", ""), "", discardLogger()).Load(context.Background())
	require.Error(t, err)
}

func TestLoader_XLSX(t *testing.T) {
	t.Run("first sheet", func(t *testing.T) {
		path := writeXLSX(t, "Sheet1", rawRows)

		df, err := NewLoader(path, "", discardLogger()).Load(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, df.Nrow())
		assert.Equal(t, []string{"summary", "city", "state", "shape", "city_latitude"}, df.Names())
		assert.Equal(t, "Austin", df.Col(domain.ColCity).Elem(0).String())
		assert.True(t, df.Col(domain.ColShape).Elem(1).IsNA())
		assert.True(t, df.Col("city_latitude").Elem(1).IsNA())
	})

	t.Run("named sheet", func(t *testing.T) {
		path := writeXLSX(t, "reports", rawRows)

		df, err := NewLoader(path, "reports", discardLogger()).Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, df.Nrow())
	})

	t.Run("missing sheet", func(t *testing.T) {
		path := writeXLSX(t, "Sheet1", rawRows)

		_, err := NewLoader(path, "absent", discardLogger()).Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), `sheet "absent" not found`)
	})
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing csv", filepath.Join(t.TempDir(), "absent.csv")},
		{"missing xlsx", filepath.Join(t.TempDir(), "absent.xlsx")},
		{"unsupported extension", filepath.Join(t.TempDir(), "reports.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(tt.path, "", discardLogger()).Load(context.Background())
			require.Error(t, err)
		})
	}

	t.Run("unsupported format is detectable", func(t *testing.T) {
		_, err := NewLoader("reports.parquet", "", discardLogger()).Load(context.Background())
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewLoader(writeFile(t, "r.csv", rawCSV), "", discardLogger()).Load(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCSVExporter(t *testing.T) {
	table := dataframe.LoadRecords([][]string{
		{"summary", "city", "state", "date"},
		{"Bright light", "Austin", "TX", "2015-06-01"},
		{"Orange orb", "Portland", "OR", "2016-07-04"},
	})
	require.NoError(t, table.Err)

	path := filepath.Join(t.TempDir(), "cleaned.csv")
	report := &domain.Report{Cleaned: domain.Cleaned{Table: table}}

	require.NoError(t, NewCSVExporter(path, discardLogger()).Export(context.Background(), report))

	back, err := NewLoader(path, "", discardLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, table.Records(), back.Records())
}

func TestCSVExporter_BadPath(t *testing.T) {
	table := dataframe.LoadRecords([][]string{{"summary"}, {"x"}})
	path := filepath.Join(t.TempDir(), "missing-dir", "cleaned.csv")

	err := NewCSVExporter(path, discardLogger()).Export(context.Background(), &domain.Report{Cleaned: domain.Cleaned{Table: table}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create csv export")
}
