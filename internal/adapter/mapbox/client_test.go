package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sightings-etl/internal/observability"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string, timeout time.Duration) *Client {
	c := NewClient(testToken, timeout, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	c.baseURL = baseURL
	return c
}

func jsonHandler(t *testing.T, resp response) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func TestClient_ForwardGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "Roswell, NM")
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "us", r.URL.Query().Get("country"))
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))

		jsonHandler(t, response{Features: []feature{{
			Center:    []float64{-104.5230, 33.3943},
			PlaceName: "Roswell, New Mexico, United States",
			Relevance: 0.97,
		}}})(w, r)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	result, err := c.ForwardGeocode(context.Background(), "Roswell", "NM")
	require.NoError(t, err)

	assert.Equal(t, 33.3943, result.Lat)
	assert.Equal(t, -104.5230, result.Lon)
	assert.Equal(t, "Roswell, New Mexico, United States", result.PlaceName)
	assert.Equal(t, 0.97, result.Confidence)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("success")), 0)
}

func TestClient_ForwardGeocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, response{Features: []feature{}}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	result, err := c.ForwardGeocode(context.Background(), "Nowhere", "XX")
	require.NoError(t, err)

	assert.Zero(t, result.Lat)
	assert.Empty(t, result.PlaceName)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("empty")), 0)
}

func TestClient_ForwardGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.ForwardGeocode(context.Background(), "Roswell", "NM")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "401")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("error")), 0)
}

func TestClient_ForwardGeocode_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).ForwardGeocode(context.Background(), "Roswell", "NM")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_ForwardGeocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).ForwardGeocode(context.Background(), "Roswell", "NM")
	require.Error(t, err)
}
