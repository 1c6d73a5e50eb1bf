//go:build firms

package firms

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
	"github.com/couchcryptid/wildfire-risk-etl/internal/observability"
)

// These tests hit the real FIRMS API and require a valid FIRMS_API_KEY env var.
// Run with: go test -tags=firms ./internal/adapter/firms/ -v -count=1

var conusBBox = [4]float64{-125, 24, -66, 49}

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("FIRMS_API_KEY")
	if key == "" {
		t.Fatal("FIRMS_API_KEY must be set to run smoke tests")
	}
	return &Client{
		apiKey:     key,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_ActiveFires_VIIRS(t *testing.T) {
	c := smokeClient(t)

	records, err := c.ActiveFires(context.Background(), conusBBox, 1, "VIIRS_NOAA20_NRT")
	require.NoError(t, err)

	// Live data varies; when detections exist they must parse cleanly.
	for i, rec := range records {
		det, err := domain.ParseRawRecord(rec)
		require.NoErrorf(t, err, "record %d should parse", i)
		assert.GreaterOrEqual(t, det.Latitude, conusBBox[1])
		assert.LessOrEqual(t, det.Latitude, conusBBox[3])
		assert.GreaterOrEqual(t, det.Longitude, conusBBox[0])
		assert.LessOrEqual(t, det.Longitude, conusBBox[2])
	}
}

func TestSmoke_ActiveFires_MODIS(t *testing.T) {
	c := smokeClient(t)

	records, err := c.ActiveFires(context.Background(), conusBBox, 1, "MODIS_NRT")
	require.NoError(t, err)

	for _, rec := range records {
		// MODIS reports brightness, not bright_ti4.
		assert.NotEmpty(t, rec.Brightness)
	}
}
