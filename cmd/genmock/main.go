// Command genmock generates a deterministic synthetic NUFORC export for demos
// and fixtures. It runs the generated table through the real cleaning steps
// and prints the resulting counts, so test assertions can be updated from the
// same seed.
//
// Usage:
//
//	go run ./cmd/genmock -rows 500 -seed 42 -out data/mock/nuforc_reports.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/sightings-etl/internal/domain"
)

var header = []string{
	domain.ColSummary, domain.ColCity, domain.ColState, domain.ColDateTime, domain.ColShape,
	domain.ColDuration, domain.ColStats, domain.ColReportLink, domain.ColText, domain.ColPosted,
	"city_latitude", "city_longitude",
}

type place struct {
	city     string
	state    string
	lat, lon float64
}

var places = []place{
	{"Phoenix", "AZ", 33.4484, -112.0740},
	{"Los Angeles", "CA", 34.0522, -118.2437},
	{"San Diego", "CA", 32.7157, -117.1611},
	{"Denver", "CO", 39.7392, -104.9903},
	{"Miami", "FL", 25.7617, -80.1918},
	{"Chicago", "IL", 41.8781, -87.6298},
	{"Roswell", "NM", 33.3943, -104.5230},
	{"New York", "NY", 40.7128, -74.0060},
	{"Portland", "OR", 45.5152, -122.6784},
	{"Austin", "TX", 30.2672, -97.7431},
	{"Houston", "TX", 29.7604, -95.3698},
	{"Seattle", "WA", 47.6062, -122.3321},
}

var (
	shapes    = []string{"light", "circle", "triangle", "fireball", "disk", "sphere", "cigar", "formation"}
	durations = []string{"5 minutes", "2 minutes", "10 minutes", "30 seconds", "1 hour", "1 minute"}
	subjects  = []string{"Bright light", "Orange orbs", "Silent craft", "Flashing object", "Green fireball", "Dark triangle"}
	motions   = []string{"hovering over the city", "moving fast to the east", "in formation", "vanished suddenly", "near the horizon"}
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rows := flag.Int("rows", 500, "number of sighting rows to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	missing := flag.Float64("missing", 0.05, "probability that a nullable cell is left empty")
	out := flag.String("out", "", "output path for the raw CSV")
	flag.Parse()

	if *out == "" || *rows < 1 || *missing < 0 || *missing > 1 {
		flag.Usage()
		return fmt.Errorf("invalid flags: -out is required, -rows must be positive, -missing in [0,1]")
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	records := [][]string{header}
	for i := range *rows {
		records = append(records, generateRow(rng, i, *missing))
	}

	if err := writeCSV(*out, records); err != nil {
		return fmt.Errorf("writing raw CSV: %w", err)
	}
	log.Printf("wrote %d rows: %s", *rows, *out)

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	return printStats(records)
}

func generateRow(rng *rand.Rand, i int, missing float64) []string {
	p := places[rng.IntN(len(places))]
	occurred := time.Date(2005+rng.IntN(18), time.Month(1+rng.IntN(12)), 1+rng.IntN(28),
		18+rng.IntN(6), 15*rng.IntN(4), 0, 0, time.UTC)
	posted := occurred.AddDate(0, 0, 3+rng.IntN(14))
	shape := shapes[rng.IntN(len(shapes))]
	duration := durations[rng.IntN(len(durations))]
	summary := fmt.Sprintf("%s %s", subjects[rng.IntN(len(subjects))], motions[rng.IntN(len(motions))])

	stats := fmt.Sprintf("Occurred : %s  (Entered as : %s) Reported: %s Posted: %s Location: %s, %s Shape: %s Duration:%s",
		occurred.Format("1/2/2006 15:04"), occurred.Format("1/2/2006 15:04"),
		posted.Format("1/2/2006 3:04:05 PM"), posted.Format("1/2/2006"), p.city, p.state, shape, duration)
	if rng.Float64() < missing {
		stats = "Details withheld by the reporter"
	}

	row := []string{
		summary,
		p.city,
		p.state,
		occurred.Format("2006-01-02T15:04:05"),
		shape,
		duration,
		stats,
		fmt.Sprintf("http://www.nuforc.org/webreports/%03d/S%06d.html", i/1000, i),
		fmt.Sprintf("%s. Reported from %s, %s.", summary, p.city, p.state),
		posted.Format("2006-01-02T00:00:00"),
		fmt.Sprintf("%.4f", p.lat),
		fmt.Sprintf("%.4f", p.lon),
	}

	// Blank out nullable cells. Latitude and longitude go missing together.
	for _, col := range []int{1, 3, 4, 5, 9, 10} {
		if rng.Float64() < missing {
			row[col] = ""
			if col == 10 {
				row[11] = ""
			}
		}
	}
	return row
}

func writeCSV(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printStats(records [][]string) error {
	raw := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(domain.NullTokens),
	)
	if raw.Err != nil {
		return fmt.Errorf("load generated table: %w", raw.Err)
	}

	cleaned, err := domain.Clean(raw, domain.DefaultRules(), nil)
	if err != nil {
		return fmt.Errorf("clean generated table: %w", err)
	}
	sightings, err := domain.ToSightings(cleaned.Table)
	if err != nil {
		return fmt.Errorf("convert generated table: %w", err)
	}
	views, _ := domain.BuildViews(sightings)

	st := cleaned.Stats
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Rows: in=%d out=%d\n", st.RowsIn, st.RowsOut)
	fmt.Printf("Dropped: geo=%d date_time=%d incomplete=%d\n",
		st.Dropped[domain.StepGeo], st.Dropped[domain.StepDateTime], st.Dropped[domain.StepIncomplete])
	fmt.Printf("Imputed: duration=%d (mode %q) shape=%d\n",
		st.Imputed[domain.ColDuration], st.DurationMode, st.Imputed[domain.ColShape])

	fmt.Println("\nMissing before cleaning:")
	for _, e := range cleaned.Before.Entries {
		fmt.Printf("  %-16s %5d %5.1f%%\n", e.Column, e.Missing, e.Percent)
	}

	fmt.Printf("\nStates (%d): ", len(views.States))
	for _, s := range views.States.Sorted() {
		fmt.Printf("%s=%d ", s.State, s.Count)
	}
	fmt.Printf("\nState-years: %d\n", len(views.StateYears))
	fmt.Print("Shapes: ")
	for _, c := range views.Shapes.Top(0) {
		fmt.Printf("%s=%d ", c.Value, c.Count)
	}
	fmt.Println()

	if len(sightings) > 0 {
		s := sightings[0]
		fmt.Printf("\nFirst sighting:\n  ID: %s\n  %s, %s (%g, %g)\n", s.ID, s.City, s.State, s.Latitude, s.Longitude)
	}
	return nil
}
