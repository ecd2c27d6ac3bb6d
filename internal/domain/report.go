package domain

import (
	"fmt"
	"time"
)

// Views are the aggregates derived from the cleaned sightings.
type Views struct {
	States     StateCounts
	StateYears StateYearCounts
	Shapes     Counts
	Cities     Counts
	Terms      Counts
}

// BuildViews derives every view from sightings. Empty views are reported as
// ErrEmptyResult warnings.
func BuildViews(sightings []Sighting) (Views, []error) {
	v := Views{
		States:     AggregateByState(sightings),
		StateYears: AggregateByStateYear(sightings),
		Shapes:     AggregateByShape(sightings),
		Cities:     AggregateByCity(sightings),
		Terms:      SummaryTerms(sightings),
	}

	var warnings []error
	if len(v.States) == 0 {
		warnings = append(warnings, fmt.Errorf("state view: %w", ErrEmptyResult))
	}
	if len(v.StateYears) == 0 {
		warnings = append(warnings, fmt.Errorf("state-year view: %w", ErrEmptyResult))
	}
	return v, warnings
}

// Report is the outcome of a pipeline run. It is not modified after it is
// published.
type Report struct {
	Cleaned     Cleaned
	Sightings   []Sighting
	Views       Views
	GeneratedAt time.Time
}
