package domain

import "slices"

// rawTextColumns are always removed from the cleaned table.
var rawTextColumns = []string{ColDateTime, ColStats, ColReportLink, ColText, ColPosted}

// Rules holds the tunable constants of the cleaning steps.
type Rules struct {
	// DefaultShape fills missing shape values.
	DefaultShape string `toml:"default_shape"`

	// DropColumns are removed after date extraction, in addition to the raw
	// text columns. Absent names are ignored.
	DropColumns []string `toml:"drop_columns"`
}

// DefaultRules returns the rules used for the NUFORC export.
func DefaultRules() Rules {
	return Rules{
		DefaultShape: "light",
		DropColumns:  slices.Clone(rawTextColumns),
	}
}

// WithDefaults fills unset fields from DefaultRules.
func (r Rules) WithDefaults() Rules {
	d := DefaultRules()
	if r.DefaultShape == "" {
		r.DefaultShape = d.DefaultShape
	}
	if r.DropColumns == nil {
		r.DropColumns = d.DropColumns
	}
	return r
}

// PrunedColumns returns every column Clean removes: the raw text columns
// followed by any extra DropColumns.
func (r Rules) PrunedColumns() []string {
	out := slices.Clone(rawTextColumns)
	for _, c := range r.DropColumns {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
