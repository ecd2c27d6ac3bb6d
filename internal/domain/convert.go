package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// sightingColumns are the columns ToSightings reads.
var sightingColumns = []string{
	ColCity, ColState, ColShape, ColDuration, ColLatitude, ColLongitude, ColSummary, ColDate,
}

// ToSightings converts a cleaned table to typed rows. Every row gets the same
// ProcessedAt timestamp.
func ToSightings(df dataframe.DataFrame) ([]Sighting, error) {
	if err := df.Error(); err != nil {
		return nil, fmt.Errorf("to sightings: %w", err)
	}
	if err := requireColumns(df, sightingColumns...); err != nil {
		return nil, err
	}

	cols := make(map[string]series.Series, len(sightingColumns))
	for _, name := range sightingColumns {
		cols[name] = df.Col(name)
	}

	now := clock.Now().UTC()
	out := make([]Sighting, df.Nrow())
	for i := range out {
		s := Sighting{
			City:        text(cols[ColCity].Elem(i)),
			State:       text(cols[ColState].Elem(i)),
			Shape:       text(cols[ColShape].Elem(i)),
			Duration:    text(cols[ColDuration].Elem(i)),
			Latitude:    number(cols[ColLatitude].Elem(i)),
			Longitude:   number(cols[ColLongitude].Elem(i)),
			Summary:     text(cols[ColSummary].Elem(i)),
			ProcessedAt: now,
		}
		if e := cols[ColDate].Elem(i); !e.IsNA() {
			if t, ok := parseOccurred(e.String()); ok {
				s.Date = &t
			}
		}
		s.ID = generateID(s)
		out[i] = s
	}
	return out, nil
}

func text(e series.Element) string {
	if e.IsNA() {
		return ""
	}
	return e.String()
}

func number(e series.Element) float64 {
	if e.IsNA() {
		return 0
	}
	v := e.Float()
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// generateID produces a deterministic ID from the sighting's key fields.
// Republishing the same cleaned row produces the same ID.
func generateID(s Sighting) string {
	date := ""
	if s.Date != nil {
		date = s.Date.Format(DateLayout)
	}
	input := fmt.Sprintf("%s|%s|%.4f|%.4f|%s|%s", s.State, s.City, s.Latitude, s.Longitude, date, s.Summary)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}
