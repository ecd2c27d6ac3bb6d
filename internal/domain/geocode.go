package domain

import (
	"context"
	"log/slog"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// BackfillCoordinates forward-geocodes rows that have a city and state but no
// latitude, so they survive the geo-filter. Failed or empty lookups leave the
// row untouched. df must already be normalized (see NormalizeSchema). It
// returns the new frame and the number of rows filled.
func BackfillCoordinates(ctx context.Context, df dataframe.DataFrame, geocoder Geocoder, logger *slog.Logger) (dataframe.DataFrame, int) {
	if geocoder == nil || !hasColumn(df, ColLatitude) || !hasColumn(df, ColCity) || !hasColumn(df, ColState) {
		return df, 0
	}

	lat := df.Col(ColLatitude)
	var lon series.Series
	hasLon := hasColumn(df, ColLongitude)
	if hasLon {
		lon = df.Col(ColLongitude)
	} else {
		lon = series.New(make([]any, df.Nrow()), series.Float, ColLongitude)
	}
	city, state := df.Col(ColCity), df.Col(ColState)

	var (
		rows         []int
		lats, lons   []float64
		failed, miss int
	)
	for i, na := range lat.IsNaN() {
		if !na || city.Elem(i).IsNA() || state.Elem(i).IsNA() {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		name, st := city.Elem(i).String(), state.Elem(i).String()
		result, err := geocoder.ForwardGeocode(ctx, name, st)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"row", i,
				"city", name,
				"state", st,
				"error", err,
			)
			failed++
			continue
		}
		if result.Lat == 0 && result.Lon == 0 {
			miss++
			continue
		}
		rows = append(rows, i)
		lats = append(lats, result.Lat)
		lons = append(lons, result.Lon)
	}

	if failed > 0 || miss > 0 {
		logger.Info("coordinate backfill incomplete", "failed", failed, "no_match", miss)
	}
	if len(rows) == 0 {
		return df, 0
	}

	lat = lat.Set(rows, series.New(lats, series.Float, ColLatitude))
	lon = lon.Set(rows, series.New(lons, series.Float, ColLongitude))
	return df.Mutate(lat).Mutate(lon), len(rows)
}
