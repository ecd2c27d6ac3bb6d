package domain

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/require"
)

var rawHeader = []string{
	"summary", "city", "state", "date_time", "shape", "duration", "stats",
	"report_link", "text", "posted", "city_latitude", "city_longitude",
}

// rawRow returns a complete NUFORC row with the given fields replaced. An
// empty override is a missing value.
func rawRow(overrides map[string]string) []string {
	row := map[string]string{
		"summary":        "Bright light hovering over the lake",
		"city":           "Austin",
		"state":          "TX",
		"date_time":      "2015-07-04T21:00:00",
		"shape":          "circle",
		"duration":       "5 minutes",
		"stats":          "Occurred : 7/4/2015 21:00  (Entered as : 07/04/15 21:00) Reported: 7/5/2015",
		"report_link":    "http://www.nuforc.org/webreports/121/S121000.html",
		"text":           "We were walking the dog when a bright light appeared.",
		"posted":         "2015-07-10T00:00:00",
		"city_latitude":  "30.2672",
		"city_longitude": "-97.7431",
	}
	for k, v := range overrides {
		row[k] = v
	}
	out := make([]string, len(rawHeader))
	for i, name := range rawHeader {
		out[i] = row[name]
	}
	return out
}

func loadRaw(t *testing.T, rows ...[]string) dataframe.DataFrame {
	t.Helper()
	return loadRecords(t, append([][]string{rawHeader}, rows...))
}

func loadRecords(t *testing.T, records [][]string) dataframe.DataFrame {
	t.Helper()
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(NullTokens),
	)
	require.NoError(t, df.Err)
	return df
}

func column(t *testing.T, df dataframe.DataFrame, name string) []string {
	t.Helper()
	require.Contains(t, df.Names(), name)
	return df.Col(name).Records()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockGeocoder struct {
	results map[string]GeocodingResult // keyed by "city|state"
	err     error
	calls   int
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, city, state string) (GeocodingResult, error) {
	m.calls++
	if m.err != nil {
		return GeocodingResult{}, m.err
	}
	return m.results[city+"|"+state], nil
}
