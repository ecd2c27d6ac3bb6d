package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// NullTokens are the cell values treated as missing when a table is loaded.
var NullTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "<nil>"}

// ColumnAliases maps export column names to their canonical names.
var ColumnAliases = map[string]string{
	"city_latitude":  ColLatitude,
	"city_longitude": ColLongitude,
}

// rawRequired lists the columns a raw export must carry. Latitude may also
// arrive under its alias.
var rawRequired = []string{ColLatitude, ColDuration, ColShape, ColStats, ColDateTime, ColPosted, ColSummary}

// cleanedRequired lists the columns of a table that already went through Clean.
var cleanedRequired = []string{ColLatitude, ColDuration, ColShape, ColSummary, ColDate}

// ErrEmptyResult marks an advisory condition: a table or view ended up empty.
// It never aborts processing.
var ErrEmptyResult = errors.New("empty result")

// SchemaError reports required columns missing from an input table.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ParseFailure records a single value that could not be parsed and was
// replaced with a missing value. Row is the 0-based data row of the raw table,
// whichever step found the failure.
type ParseFailure struct {
	Column string `json:"column"`
	Row    int    `json:"row"`
	Value  string `json:"value"`
}

func (p ParseFailure) Error() string {
	return fmt.Sprintf("parse %s at row %d: %q", p.Column, p.Row, p.Value)
}

// IsCleaned reports whether df has the shape Clean produces: a date column and
// no stats column.
func IsCleaned(df dataframe.DataFrame) bool {
	names := df.Names()
	return slices.Contains(names, ColDate) && !slices.Contains(names, ColStats)
}

// ValidateSchema checks that df carries every column the cleaning steps read.
// Aliased names satisfy their canonical column.
func ValidateSchema(df dataframe.DataFrame) error {
	if err := df.Error(); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	required := rawRequired
	if IsCleaned(df) {
		required = cleanedRequired
	}
	return requireColumns(df, required...)
}

func requireColumns(df dataframe.DataFrame, cols ...string) error {
	have := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		have[name] = true
		if canonical, ok := ColumnAliases[name]; ok {
			have[canonical] = true
		}
	}
	var missing []string
	for _, c := range cols {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// hasColumn reports whether df has a column with the given name.
func hasColumn(df dataframe.DataFrame, name string) bool {
	return slices.Contains(df.Names(), name)
}
