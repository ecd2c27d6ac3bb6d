// Package file reads the raw sightings table from disk and writes the cleaned
// table back as CSV.
package file

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"

	"github.com/couchcryptid/sightings-etl/internal/domain"
)

// ErrUnsupportedFormat is returned for input files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Loader reads a raw export from a CSV or XLSX file. Every column is loaded as
// text and null tokens become missing values.
type Loader struct {
	path   string
	sheet  string // XLSX only; empty selects the first sheet
	logger *slog.Logger
}

// NewLoader creates a Loader for path. sheet is ignored for CSV input.
func NewLoader(path, sheet string, logger *slog.Logger) *Loader {
	return &Loader{path: path, sheet: sheet, logger: logger}
}

// Load reads the whole file into a DataFrame.
func (l *Loader) Load(ctx context.Context) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}

	var (
		df  dataframe.DataFrame
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(l.path)); ext {
	case ".csv", ".txt":
		df, err = readCSV(l.path)
	case ".xlsx":
		df, err = readXLSX(l.path, l.sheet)
	default:
		return dataframe.DataFrame{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	l.logger.Debug("input file read", "path", l.path, "rows", df.Nrow(), "columns", df.Ncol())
	return df, nil
}

func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(domain.NullTokens),
		dataframe.WithLazyQuotes(true),
	}
}

func readCSV(path string) (dataframe.DataFrame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open csv: %w", err)
	}

	df := dataframe.ReadCSV(bytes.NewReader(data), loadOptions()...)
	if df.Err != nil {
		// gota refuses a table without rows; a lone header row is still a
		// valid, empty export.
		if header, ok := headerOnly(data); ok {
			return emptyFrame(header), nil
		}
		return dataframe.DataFrame{}, fmt.Errorf("read csv %s: %w", path, df.Err)
	}
	return df, nil
}

// headerOnly reports whether data holds exactly one CSV record.
func headerOnly(data []byte) ([]string, bool) {
	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil || len(records) != 1 {
		return nil, false
	}
	return records[0], true
}

// emptyFrame builds a table with the given text columns and no rows.
func emptyFrame(header []string) dataframe.DataFrame {
	cols := make([]series.Series, len(header))
	for i, h := range header {
		cols[i] = series.New([]string{}, series.String, strings.TrimSpace(h))
	}
	return dataframe.New(cols...)
}

func readXLSX(path, sheetName string) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open xlsx: %w", err)
	}
	if len(xlFile.Sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("read xlsx %s: workbook has no sheets", path)
	}

	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return dataframe.DataFrame{}, fmt.Errorf("read xlsx %s: sheet %q not found", path, sheetName)
		}
		sheet = s
	}

	records := sheetRecords(sheet)
	switch len(records) {
	case 0:
		return dataframe.DataFrame{}, fmt.Errorf("read xlsx %s: sheet %q is empty", path, sheet.Name)
	case 1:
		return emptyFrame(records[0]), nil
	}

	df := dataframe.LoadRecords(records, loadOptions()...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read xlsx %s: %w", path, df.Err)
	}
	return df, nil
}

// sheetRecords converts a sheet to records. The first row holds the headers;
// short rows are padded and fully blank rows are skipped.
func sheetRecords(sheet *xlsx.Sheet) [][]string {
	var records [][]string
	width := 0
	for _, row := range sheet.Rows {
		if row == nil {
			continue
		}
		if records == nil {
			width = len(row.Cells)
		}
		record := make([]string, width)
		blank := true
		for i, cell := range row.Cells {
			if i >= width {
				break
			}
			record[i] = strings.TrimSpace(cell.Value)
			if record[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		records = append(records, record)
	}
	return records
}
