// Command validate checks a raw NUFORC export and its cleaned CSV export
// against the cleaning invariants: the cleaned table has no missing values
// outside the date column, carries no raw text columns, reproduces exactly
// from the raw table, and is unchanged by a second cleaning pass.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw data/mock/nuforc_reports.csv \
//	  -cleaned data/mock/nuforc_cleaned.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/sightings-etl/internal/adapter/file"
	"github.com/couchcryptid/sightings-etl/internal/config"
	"github.com/couchcryptid/sightings-etl/internal/domain"
)

// maxReported caps the errors listed per phase.
const maxReported = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawPath := flag.String("raw", "", "path to the raw CSV or XLSX export")
	cleanedPath := flag.String("cleaned", "", "path to the cleaned CSV export")
	rulesPath := flag.String("rules", "", "optional TOML rules file used for the cleaned export")
	flag.Parse()

	if *rawPath == "" || *cleanedPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*rawPath, *cleanedPath, *rulesPath))
}

func run(rawPath, cleanedPath, rulesPath string) int {
	// Set a fixed clock matching genmock for reproducible timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Sighting Data Integrity Validation ===")
	fmt.Println()

	rules := domain.DefaultRules()
	if rulesPath != "" {
		var err error
		if rules, err = config.LoadRules(rulesPath); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	raw, err := file.NewLoader(rawPath, "", logger).Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw export: %v\n", err)
		return 1
	}
	exported, err := file.NewLoader(cleanedPath, "", logger).Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load cleaned export: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRawSchema(raw),
		validateCleanedShape(exported, rules),
		validateReproducible(raw, exported, rules),
		validateIdempotent(exported, rules),
		validateAggregates(exported, rules),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d raw, %d cleaned\n", raw.Nrow(), exported.Nrow())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateRawSchema(raw dataframe.DataFrame) *phase {
	p := &phase{name: "Raw export schema"}
	if err := domain.ValidateSchema(raw); err != nil {
		p.errorf("%v", err)
	}
	if domain.IsCleaned(raw) {
		p.errorf("raw export already looks cleaned (has %q, lacks %q)", domain.ColDate, domain.ColStats)
	}
	return p
}

// validateCleanedShape checks the column set and the missing-value invariants.
func validateCleanedShape(cleaned dataframe.DataFrame, rules domain.Rules) *phase {
	p := &phase{name: "Cleaned export shape"}
	names := cleaned.Names()

	for _, c := range rules.PrunedColumns() {
		if slices.Contains(names, c) {
			p.errorf("column %q should have been dropped", c)
		}
	}
	for _, c := range []string{domain.ColLatitude, domain.ColShape, domain.ColDuration, domain.ColSummary, domain.ColDate} {
		if !slices.Contains(names, c) {
			p.errorf("missing column %q", c)
		}
	}

	for _, name := range names {
		for row, na := range cleaned.Col(name).IsNaN() {
			if na && name != domain.ColDate {
				p.errorf("row %d: missing value in %q", row+2, name)
			}
		}
	}

	if slices.Contains(names, domain.ColLatitude) {
		for row, v := range cleaned.Col(domain.ColLatitude).Float() {
			if v < -90 || v > 90 {
				p.errorf("row %d: latitude %v out of range", row+2, v)
			}
		}
	}
	if slices.Contains(names, domain.ColDate) {
		col := cleaned.Col(domain.ColDate)
		for row := range col.Len() {
			e := col.Elem(row)
			if e.IsNA() {
				continue
			}
			if _, err := time.Parse(domain.DateLayout, e.String()); err != nil {
				p.errorf("row %d: date %q is not %s", row+2, e.String(), domain.DateLayout)
			}
		}
	}
	return p
}

// validateReproducible re-cleans the raw export and compares it with the
// cleaned export cell by cell.
func validateReproducible(raw, exported dataframe.DataFrame, rules domain.Rules) *phase {
	p := &phase{name: "Cleaned export matches raw export"}
	cleaned, err := domain.Clean(raw, rules, nil)
	if err != nil {
		p.errorf("clean raw export: %v", err)
		return p
	}
	compareTables(p, cleaned.Table, exported, rules)
	return p
}

// validateIdempotent cleans the cleaned export again and expects no change.
func validateIdempotent(exported dataframe.DataFrame, rules domain.Rules) *phase {
	p := &phase{name: "Cleaning is idempotent"}
	again, err := domain.Clean(exported, rules, nil)
	if err != nil {
		p.errorf("clean cleaned export: %v", err)
		return p
	}
	for step, n := range again.Stats.Dropped {
		if n > 0 {
			p.errorf("second pass dropped %d rows at step %s", n, step)
		}
	}
	for col, n := range again.Stats.Imputed {
		if n > 0 {
			p.errorf("second pass imputed %d values in %s", n, col)
		}
	}
	compareTables(p, again.Table, exported, rules)
	return p
}

// validateAggregates checks that the views account for every sighting.
func validateAggregates(exported dataframe.DataFrame, rules domain.Rules) *phase {
	p := &phase{name: "Aggregates cover every sighting"}
	cleaned, err := domain.Clean(exported, rules, nil)
	if err != nil {
		p.errorf("clean cleaned export: %v", err)
		return p
	}
	sightings, err := domain.ToSightings(cleaned.Table)
	if err != nil {
		p.errorf("convert sightings: %v", err)
		return p
	}
	views, _ := domain.BuildViews(sightings)

	total, dated := 0, 0
	for _, n := range views.States {
		total += n
	}
	for _, n := range views.StateYears {
		dated += n
	}
	wantDated := 0
	for _, s := range sightings {
		if s.Date != nil {
			wantDated++
		}
	}

	if total != len(sightings) {
		p.errorf("state view counts %d sightings, table has %d", total, len(sightings))
	}
	if dated != wantDated {
		p.errorf("state-year view counts %d sightings, table has %d dated", dated, wantDated)
	}
	return p
}

func compareTables(p *phase, want, got dataframe.DataFrame, rules domain.Rules) {
	if diff := cmp.Diff(want.Names(), got.Names()); diff != "" {
		p.errorf("columns differ (-want +got):\n%s", diff)
		return
	}
	if want.Nrow() != got.Nrow() {
		p.errorf("row count: want %d, got %d", want.Nrow(), got.Nrow())
		return
	}

	// Compare through a second clean so both sides carry the same column types.
	normalized, err := domain.Clean(got, rules, nil)
	if err != nil {
		p.errorf("normalize export: %v", err)
		return
	}
	wantRecords, gotRecords := want.Records(), normalized.Table.Records()
	for i := 1; i < len(wantRecords) && i < len(gotRecords); i++ {
		if diff := cmp.Diff(wantRecords[i], gotRecords[i]); diff != "" {
			p.errorf("row %d differs (-want +got):\n%s", i+1, diff)
		}
	}
}
