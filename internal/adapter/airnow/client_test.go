package airnow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-risk-etl/internal/observability"
)

const observationsJSON = `[
	{"ParameterName":"O3","AQI":42,"Category":{"Number":1,"Name":"Good"}},
	{"ParameterName":"PM2.5","AQI":158,"Category":{"Number":4,"Name":"Unhealthy"}}
]`

func newTestAirNow(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", 5*time.Second, observability.NewMetricsForTesting(), slog.Default())
	c.baseURL = srv.URL
	return c
}

func TestCurrentObservation(t *testing.T) {
	t.Run("prefers PM2.5", func(t *testing.T) {
		var gotQuery map[string][]string
		c := newTestAirNow(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			fmt.Fprint(w, observationsJSON)
		})

		obs, err := c.CurrentObservation(context.Background(), 38.1234, -120.5678)

		require.NoError(t, err)
		assert.Equal(t, []string{"38.1234"}, gotQuery["latitude"])
		assert.Equal(t, []string{"-120.5678"}, gotQuery["longitude"])
		assert.Equal(t, []string{"test-key"}, gotQuery["API_KEY"])

		assert.Equal(t, 158, obs.AQI)
		assert.Equal(t, "PM2.5", obs.Pollutant)
		assert.Equal(t, "Unhealthy", obs.Category)
	})

	t.Run("falls back to highest AQI without PM2.5", func(t *testing.T) {
		c := newTestAirNow(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[
				{"ParameterName":"O3","AQI":42,"Category":{"Name":"Good"}},
				{"ParameterName":"PM10","AQI":95,"Category":{"Name":"Moderate"}}
			]`)
		})

		obs, err := c.CurrentObservation(context.Background(), 38, -120)

		require.NoError(t, err)
		assert.Equal(t, 95, obs.AQI)
		assert.Equal(t, "PM10", obs.Pollutant)
	})

	t.Run("no nearby monitors", func(t *testing.T) {
		c := newTestAirNow(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[]`)
		})

		obs, err := c.CurrentObservation(context.Background(), 38, -120)

		require.NoError(t, err)
		assert.Zero(t, obs.AQI)
		assert.Empty(t, obs.Pollutant)
	})

	t.Run("API error", func(t *testing.T) {
		c := newTestAirNow(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "invalid key", http.StatusForbidden)
		})

		_, err := c.CurrentObservation(context.Background(), 38, -120)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 403")
	})
}
