package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/sightings-etl/internal/domain"
)

const maxLimit = 1000

type api struct {
	results ResultProvider
	topN    int
}

type reportResponse struct {
	GeneratedAt   time.Time            `json:"generated_at"`
	Stats         domain.CleanStats    `json:"stats"`
	MissingBefore domain.MissingReport `json:"missing_before"`
	MissingAfter  domain.MissingReport `json:"missing_after"`
	MissingFinal  domain.MissingReport `json:"missing_final"`
	Warnings      []string             `json:"warnings"`
	Sightings     int                  `json:"sightings"`
}

// current writes 503 and returns nil while no run has completed.
func (a *api) current(w http.ResponseWriter) *domain.Report {
	report := a.results.Result()
	if report == nil {
		writeError(w, http.StatusServiceUnavailable, "no completed pipeline run yet")
	}
	return report
}

func (a *api) report(w http.ResponseWriter, _ *http.Request) {
	report := a.current(w)
	if report == nil {
		return
	}

	warnings := make([]string, len(report.Cleaned.Warnings))
	for i, err := range report.Cleaned.Warnings {
		warnings[i] = err.Error()
	}
	sharedobs.WriteJSON(w, http.StatusOK, reportResponse{
		GeneratedAt:   report.GeneratedAt,
		Stats:         report.Cleaned.Stats,
		MissingBefore: report.Cleaned.Before,
		MissingAfter:  report.Cleaned.After,
		MissingFinal:  report.Cleaned.Final,
		Warnings:      warnings,
		Sightings:     len(report.Sightings),
	})
}

func (a *api) states(w http.ResponseWriter, _ *http.Request) {
	if report := a.current(w); report != nil {
		sharedobs.WriteJSON(w, http.StatusOK, report.Views.States.Sorted())
	}
}

func (a *api) stateYears(w http.ResponseWriter, _ *http.Request) {
	if report := a.current(w); report != nil {
		sharedobs.WriteJSON(w, http.StatusOK, report.Views.StateYears.Sorted())
	}
}

func (a *api) shapes(w http.ResponseWriter, _ *http.Request) {
	if report := a.current(w); report != nil {
		sharedobs.WriteJSON(w, http.StatusOK, report.Views.Shapes.Top(0))
	}
}

func (a *api) cities(w http.ResponseWriter, r *http.Request) {
	a.ranked(w, r, func(report *domain.Report) domain.Counts { return report.Views.Cities })
}

func (a *api) terms(w http.ResponseWriter, r *http.Request) {
	a.ranked(w, r, func(report *domain.Report) domain.Counts { return report.Views.Terms })
}

func (a *api) ranked(w http.ResponseWriter, r *http.Request, view func(*domain.Report) domain.Counts) {
	limit, err := parseLimit(r, a.topN)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if report := a.current(w); report != nil {
		sharedobs.WriteJSON(w, http.StatusOK, view(report).Top(limit))
	}
}

func parseLimit(r *http.Request, fallback int) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxLimit {
		return 0, fmt.Errorf("invalid limit %q: must be between 1 and %d", s, maxLimit)
	}
	return n, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
