package domain

import "time"

// Raw and cleaned column names.
const (
	ColSummary    = "summary"
	ColCity       = "city"
	ColState      = "state"
	ColDateTime   = "date_time"
	ColShape      = "shape"
	ColDuration   = "duration"
	ColStats      = "stats"
	ColReportLink = "report_link"
	ColText       = "text"
	ColPosted     = "posted"
	ColLatitude   = "latitude"
	ColLongitude  = "longitude"
	ColDate       = "date"
)

// DateLayout is the storage format of the cleaned date column.
const DateLayout = "2006-01-02"

// Sighting is one row of the cleaned table.
type Sighting struct {
	ID          string     `json:"id"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	Shape       string     `json:"shape"`
	Duration    string     `json:"duration"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Summary     string     `json:"summary"`
	Date        *time.Time `json:"date,omitempty"` // nil when the stats field had no occurrence date
	ProcessedAt time.Time  `json:"processed_at"`
}

// Year returns the occurrence year, or false when the sighting has no date.
func (s Sighting) Year() (int, bool) {
	if s.Date == nil {
		return 0, false
	}
	return s.Date.Year(), true
}
