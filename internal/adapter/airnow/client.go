// Package airnow fetches current air quality observations from the EPA
// AirNow API. AQI is attached to detections for downstream display; it
// never feeds the risk score.
package airnow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
	"github.com/couchcryptid/wildfire-risk-etl/internal/observability"
)

const defaultBaseURL = "https://www.airnowapi.org/aq"

// Client implements domain.AirQualityProvider using the AirNow API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an AirNow client.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// CurrentObservation returns the current PM2.5 observation near a point,
// falling back to the highest-AQI pollutant when PM2.5 is not reported.
func (c *Client) CurrentObservation(ctx context.Context, lat, lon float64) (domain.AirQualityObservation, error) {
	params := url.Values{
		"format":    {"application/json"},
		"latitude":  {strconv.FormatFloat(lat, 'f', 4, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', 4, 64)},
		"distance":  {"25"},
		"API_KEY":   {c.apiKey},
	}
	u := c.baseURL + "/observation/latLong/current/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.AirQualityObservation{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.EnrichAPIDuration.WithLabelValues("airnow").Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.EnrichRequests.WithLabelValues("airnow", "error").Inc()
		return domain.AirQualityObservation{}, fmt.Errorf("airnow request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.EnrichRequests.WithLabelValues("airnow", "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.AirQualityObservation{}, fmt.Errorf("airnow API error: status %d: %s", resp.StatusCode, body)
	}

	var observations []observation
	if err := json.NewDecoder(resp.Body).Decode(&observations); err != nil {
		c.metrics.EnrichRequests.WithLabelValues("airnow", "error").Inc()
		return domain.AirQualityObservation{}, fmt.Errorf("decode response: %w", err)
	}
	c.metrics.EnrichRequests.WithLabelValues("airnow", "success").Inc()

	return pick(observations), nil
}

// pick prefers PM2.5 (the wildfire smoke metric); otherwise the
// highest-AQI pollutant reported.
func pick(observations []observation) domain.AirQualityObservation {
	var best *observation
	for i := range observations {
		o := &observations[i]
		if o.ParameterName == "PM2.5" {
			best = o
			break
		}
		if best == nil || o.AQI > best.AQI {
			best = o
		}
	}
	if best == nil {
		return domain.AirQualityObservation{}
	}
	return domain.AirQualityObservation{
		AQI:       best.AQI,
		Pollutant: best.ParameterName,
		Category:  best.Category.Name,
	}
}

// AirNow API response types.

type observation struct {
	ParameterName string `json:"ParameterName"`
	AQI           int    `json:"AQI"`
	Category      struct {
		Name string `json:"Name"`
	} `json:"Category"`
}
