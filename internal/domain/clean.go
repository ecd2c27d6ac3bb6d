package domain

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Row-drop steps, used as keys of CleanStats.Dropped.
const (
	StepGeo        = "geo"
	StepDateTime   = "date_time"
	StepIncomplete = "incomplete"
)

// CleanStats counts what each cleaning step did.
type CleanStats struct {
	RowsIn        int            `json:"rows_in"`
	RowsOut       int            `json:"rows_out"`
	Dropped       map[string]int `json:"dropped"` // step -> rows
	Imputed       map[string]int `json:"imputed"` // column -> values
	DurationMode  string         `json:"duration_mode"`
	Backfilled    int            `json:"backfilled"`
	ParseFailures []ParseFailure `json:"parse_failures"`
}

// Cleaned is the outcome of Clean.
type Cleaned struct {
	Table  dataframe.DataFrame
	Before MissingReport // raw table
	After  MissingReport // after imputation, before the date filter
	Final  MissingReport // returned table
	Stats  CleanStats

	// Warnings are advisory (ErrEmptyResult); the table is still valid.
	Warnings []error
}

// Backfiller fills missing values ahead of the geo filter and returns the
// number of rows it completed. Clean skips it when nil.
type Backfiller func(dataframe.DataFrame) (dataframe.DataFrame, int)

// Clean runs the cleaning sequence over a raw table:
//
//  1. validate the schema, rename aliases, parse coordinates
//  2. backfill coordinates (optional)
//  3. drop rows without latitude
//  4. impute duration with its mode, shape with rules.DefaultShape
//  5. drop rows without date_time or posted
//  6. drop rows with any other missing value (the derived date column excepted)
//  7. extract the occurrence date from stats
//  8. drop the raw text columns
//  9. parse the date, convert summary to text
//
// Every step returns a new frame; raw is never modified. A table that Clean
// already produced passes through unchanged.
func Clean(raw dataframe.DataFrame, rules Rules, backfill Backfiller) (Cleaned, error) {
	rules = rules.WithDefaults()

	df, failures, err := NormalizeSchema(raw)
	if err != nil {
		return Cleaned{}, err
	}

	out := Cleaned{
		Before: Audit(df),
		Stats: CleanStats{
			RowsIn:        df.Nrow(),
			Dropped:       map[string]int{},
			Imputed:       map[string]int{},
			ParseFailures: failures,
		},
	}

	if backfill != nil {
		df, out.Stats.Backfilled = backfill(df)
	}

	// rows maps each row of df back to the raw table for failure reports.
	rows := make([]int, df.Nrow())
	for i := range rows {
		rows[i] = i
	}

	n := df.Nrow()
	df, rows = dropTracked(df, rows, ColLatitude)
	out.Stats.Dropped[StepGeo] = n - df.Nrow()

	var filled int
	df, out.Stats.DurationMode, filled = ImputeMode(df, ColDuration)
	out.Stats.Imputed[ColDuration] = filled
	df, filled = FillMissing(df, ColShape, rules.DefaultShape)
	out.Stats.Imputed[ColShape] = filled

	out.After = Audit(df)

	n = df.Nrow()
	df, rows = dropTracked(df, rows, ColDateTime, ColPosted)
	out.Stats.Dropped[StepDateTime] = n - df.Nrow()

	n = df.Nrow()
	df, rows = dropTracked(df, rows, incompleteColumns(df, []string{ColDate})...)
	out.Stats.Dropped[StepIncomplete] = n - df.Nrow()

	df = ExtractDate(df)
	df = PruneColumns(df, rules.PrunedColumns()...)

	df, failures = CoerceTypes(df)
	for _, f := range failures {
		f.Row = rows[f.Row]
		out.Stats.ParseFailures = append(out.Stats.ParseFailures, f)
	}

	if err := df.Error(); err != nil {
		return Cleaned{}, fmt.Errorf("clean: %w", err)
	}

	out.Table = df
	out.Final = Audit(df)
	out.Stats.RowsOut = df.Nrow()
	if df.Nrow() == 0 {
		out.Warnings = append(out.Warnings, fmt.Errorf("cleaned table: %w", ErrEmptyResult))
	}
	return out, nil
}

// NormalizeSchema validates df, renames aliased columns and parses latitude
// and longitude as floats. Unparseable coordinates become missing values and
// are reported; Row is the 0-based data row of df.
func NormalizeSchema(df dataframe.DataFrame) (dataframe.DataFrame, []ParseFailure, error) {
	if err := ValidateSchema(df); err != nil {
		return df, nil, err
	}

	for _, alias := range []string{"city_latitude", "city_longitude"} {
		canonical := ColumnAliases[alias]
		if hasColumn(df, alias) && !hasColumn(df, canonical) {
			df = df.Rename(canonical, alias)
		}
	}

	var failures []ParseFailure
	for _, col := range []string{ColLatitude, ColLongitude} {
		if !hasColumn(df, col) {
			continue
		}
		var f []ParseFailure
		df, f = floatColumn(df, col)
		failures = append(failures, f...)
	}
	if err := df.Error(); err != nil {
		return df, nil, fmt.Errorf("normalize schema: %w", err)
	}
	return df, failures, nil
}

func floatColumn(df dataframe.DataFrame, name string) (dataframe.DataFrame, []ParseFailure) {
	s := df.Col(name)
	if s.Type() == series.Float {
		return df, nil
	}

	var failures []ParseFailure
	values := make([]any, s.Len())
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		text := strings.TrimSpace(e.String())
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			failures = append(failures, ParseFailure{Column: name, Row: i, Value: text})
			continue
		}
		values[i] = v
	}
	return df.Mutate(series.New(values, series.Float, name)), failures
}

// DropMissing removes rows missing a value in any of cols. Columns absent from
// df are ignored.
func DropMissing(df dataframe.DataFrame, cols ...string) dataframe.DataFrame {
	return keepRows(df, complete(df, cols))
}

// DropIncomplete removes rows missing a value in any column except the
// excluded ones.
func DropIncomplete(df dataframe.DataFrame, except ...string) dataframe.DataFrame {
	return DropMissing(df, incompleteColumns(df, except)...)
}

func incompleteColumns(df dataframe.DataFrame, except []string) []string {
	var cols []string
	for _, name := range df.Names() {
		if !slices.Contains(except, name) {
			cols = append(cols, name)
		}
	}
	return cols
}

// complete marks the rows that have a value in every one of cols.
func complete(df dataframe.DataFrame, cols []string) []bool {
	keep := make([]bool, df.Nrow())
	for i := range keep {
		keep[i] = true
	}
	for _, col := range cols {
		if !hasColumn(df, col) {
			continue
		}
		for i, na := range df.Col(col).IsNaN() {
			if na {
				keep[i] = false
			}
		}
	}
	return keep
}

// dropTracked works like DropMissing and filters rows, the raw-table index
// of each row of df, in step.
func dropTracked(df dataframe.DataFrame, rows []int, cols ...string) (dataframe.DataFrame, []int) {
	keep := complete(df, cols)
	kept := make([]int, 0, len(rows))
	for i, k := range keep {
		if k {
			kept = append(kept, rows[i])
		}
	}
	return keepRows(df, keep), kept
}

func keepRows(df dataframe.DataFrame, keep []bool) dataframe.DataFrame {
	if !slices.Contains(keep, false) {
		return df
	}
	return df.Subset(keep)
}

// Mode returns the most frequent non-missing value of s. Ties resolve to the
// lexicographically smallest value. ok is false when s has no values.
func Mode(s series.Series) (mode string, ok bool) {
	counts := make(map[string]int)
	for i := 0; i < s.Len(); i++ {
		if e := s.Elem(i); !e.IsNA() {
			counts[e.String()]++
		}
	}
	best := -1
	for v, c := range counts {
		if c > best || (c == best && v < mode) {
			mode, best = v, c
		}
	}
	return mode, best > 0
}

// ImputeMode fills the missing values of col with its mode. When col has no
// values at all it is left untouched.
func ImputeMode(df dataframe.DataFrame, col string) (dataframe.DataFrame, string, int) {
	if !hasColumn(df, col) {
		return df, "", 0
	}
	mode, ok := Mode(df.Col(col))
	if !ok {
		return df, "", 0
	}
	out, n := FillMissing(df, col, mode)
	return out, mode, n
}

// FillMissing replaces the missing values of col with value and returns the
// number of values replaced.
func FillMissing(df dataframe.DataFrame, col, value string) (dataframe.DataFrame, int) {
	if !hasColumn(df, col) {
		return df, 0
	}
	s := df.Col(col)
	var idx []int
	for i, na := range s.IsNaN() {
		if na {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return df, 0
	}

	fill := make([]string, len(idx))
	for i := range fill {
		fill[i] = value
	}
	s = s.Set(idx, series.New(fill, s.Type(), col))
	if s.Err != nil {
		return dataframe.DataFrame{Err: fmt.Errorf("fill %s: %w", col, s.Err)}, 0
	}
	return df.Mutate(s), len(idx)
}

// ExtractDate derives the date column from the stats column. Rows whose stats
// do not start with "Occurred : M/D/YYYY" get a missing date. A frame without
// stats is returned as is.
func ExtractDate(df dataframe.DataFrame) dataframe.DataFrame {
	if !hasColumn(df, ColStats) {
		return df
	}
	stats := df.Col(ColStats)
	dates := make([]string, stats.Len())
	for i := range dates {
		dates[i] = "NaN"
		if e := stats.Elem(i); !e.IsNA() {
			if frag, ok := extractOccurred(e.String()); ok {
				dates[i] = frag
			}
		}
	}
	return df.Mutate(series.New(dates, series.String, ColDate))
}

// PruneColumns drops the named columns that exist in df.
func PruneColumns(df dataframe.DataFrame, cols ...string) dataframe.DataFrame {
	var drop []string
	for _, c := range cols {
		if hasColumn(df, c) {
			drop = append(drop, c)
		}
	}
	if len(drop) == 0 {
		return df
	}
	return df.Drop(drop)
}

// CoerceTypes parses the date column into DateLayout text (unparseable dates
// become missing and are reported with their row in df) and converts summary
// to a string column.
func CoerceTypes(df dataframe.DataFrame) (dataframe.DataFrame, []ParseFailure) {
	var failures []ParseFailure

	if hasColumn(df, ColDate) {
		s := df.Col(ColDate)
		dates := make([]string, s.Len())
		for i := range dates {
			dates[i] = "NaN"
			e := s.Elem(i)
			if e.IsNA() {
				continue
			}
			t, ok := parseOccurred(e.String())
			if !ok {
				failures = append(failures, ParseFailure{Column: ColDate, Row: i, Value: e.String()})
				continue
			}
			dates[i] = t.Format(DateLayout)
		}
		df = df.Mutate(series.New(dates, series.String, ColDate))
	}

	if hasColumn(df, ColSummary) {
		if s := df.Col(ColSummary); s.Type() != series.String {
			df = df.Mutate(series.New(s.Records(), series.String, ColSummary))
		}
	}
	return df, failures
}
