package domain

import (
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
)

// MissingColumn is one line of a MissingReport.
type MissingColumn struct {
	Column  string  `json:"column"`
	Missing int     `json:"missing"`
	Percent float64 `json:"percent"` // of all rows, one decimal
	Type    string  `json:"type"`
}

// MissingReport summarizes missing values per column of a table.
// Only columns with at least one missing value are listed, highest
// percentage first.
type MissingReport struct {
	Rows    int             `json:"rows"`
	Columns int             `json:"columns"`
	Entries []MissingColumn `json:"entries"`
}

// Audit counts the missing values of every column in df. It does not modify df.
func Audit(df dataframe.DataFrame) MissingReport {
	rows, cols := df.Dims()
	report := MissingReport{Rows: rows, Columns: cols, Entries: []MissingColumn{}}
	if rows == 0 {
		return report
	}

	types := df.Types()
	for i, name := range df.Names() {
		missing := 0
		for _, na := range df.Col(name).IsNaN() {
			if na {
				missing++
			}
		}
		if missing == 0 {
			continue
		}
		report.Entries = append(report.Entries, MissingColumn{
			Column:  name,
			Missing: missing,
			Percent: 100 * float64(missing) / float64(rows),
			Type:    string(types[i]),
		})
	}

	// Sort on the exact ratio, round afterwards.
	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].Percent > report.Entries[j].Percent
	})
	for i := range report.Entries {
		report.Entries[i].Percent = math.Round(report.Entries[i].Percent*10) / 10
	}
	return report
}

// Lookup returns the entry for column, if it has missing values.
func (r MissingReport) Lookup(column string) (MissingColumn, bool) {
	for _, e := range r.Entries {
		if e.Column == column {
			return e, true
		}
	}
	return MissingColumn{}, false
}
