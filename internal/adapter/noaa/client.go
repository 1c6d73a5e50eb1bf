// Package noaa fetches fire-relevant weather from the NOAA National Weather
// Service API. Lookups are two-step: /points resolves coordinates to a
// forecast grid, /gridpoints carries humidity, wind, precipitation, and the
// grassland fire danger index.
package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
	"github.com/couchcryptid/wildfire-risk-etl/internal/observability"
)

const defaultBaseURL = "https://api.weather.gov"

// userAgent is required by the NWS API.
const userAgent = "(wildfire-risk-etl, ops@couchcryptid.dev)"

// Client implements domain.WeatherProvider using the NOAA NWS API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a NOAA weather client.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FireWeather returns current fire weather for a point.
func (c *Client) FireWeather(ctx context.Context, lat, lon float64) (domain.WeatherObservation, error) {
	start := time.Now()
	obs, err := c.fireWeather(ctx, lat, lon)
	c.metrics.EnrichAPIDuration.WithLabelValues("noaa").Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.EnrichRequests.WithLabelValues("noaa", "error").Inc()
		return domain.WeatherObservation{}, err
	}
	c.metrics.EnrichRequests.WithLabelValues("noaa", "success").Inc()
	return obs, nil
}

func (c *Client) fireWeather(ctx context.Context, lat, lon float64) (domain.WeatherObservation, error) {
	var point pointResponse
	u := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)
	if err := c.getJSON(ctx, u, &point); err != nil {
		return domain.WeatherObservation{}, fmt.Errorf("point metadata: %w", err)
	}

	p := point.Properties
	if p.GridID == "" {
		return domain.WeatherObservation{}, fmt.Errorf("no forecast grid for %.4f,%.4f", lat, lon)
	}

	var grid gridpointResponse
	u = fmt.Sprintf("%s/gridpoints/%s/%d,%d", c.baseURL, p.GridID, p.GridX, p.GridY)
	if err := c.getJSON(ctx, u, &grid); err != nil {
		return domain.WeatherObservation{}, fmt.Errorf("gridpoint forecast: %w", err)
	}

	g := grid.Properties
	return domain.WeatherObservation{
		RelativeHumidity:  firstValue(g.RelativeHumidity),
		WindSpeedKMH:      firstValue(g.WindSpeed),
		PrecipProbability: firstValue(g.ProbabilityOfPrecipitation),
		FireDangerIndex:   firstValue(g.GrasslandFireDangerIndex),
		Temperature:       firstValue(g.Temperature),
		GridID:            p.GridID,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nws request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("nws API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// firstValue extracts the first entry of an NWS time series, or nil when
// the series is empty or the value is null.
func firstValue(series timeSeries) *float64 {
	for _, v := range series.Values {
		if v.Value != nil {
			return v.Value
		}
	}
	return nil
}

// NWS API response types.

type pointResponse struct {
	Properties struct {
		GridID string `json:"gridId"`
		GridX  int    `json:"gridX"`
		GridY  int    `json:"gridY"`
	} `json:"properties"`
}

type gridpointResponse struct {
	Properties struct {
		Temperature                timeSeries `json:"temperature"`
		RelativeHumidity           timeSeries `json:"relativeHumidity"`
		WindSpeed                  timeSeries `json:"windSpeed"`
		ProbabilityOfPrecipitation timeSeries `json:"probabilityOfPrecipitation"`
		GrasslandFireDangerIndex   timeSeries `json:"grasslandFireDangerIndex"`
	} `json:"properties"`
}

type timeSeries struct {
	Values []struct {
		ValidTime string   `json:"validTime"`
		Value     *float64 `json:"value"`
	} `json:"values"`
}
