// Package firms fetches active fire detections from the NASA FIRMS area API.
package firms

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
	"github.com/couchcryptid/wildfire-risk-etl/internal/observability"
)

const defaultBaseURL = "https://firms.modaps.eosdis.nasa.gov/api/area/csv"

// Client fetches fire detections from the FIRMS area CSV endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a FIRMS client.
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

// ActiveFires fetches raw detection records for the bounding box
// (west, south, east, north) over the last days days (1-10) from the given
// satellite source (e.g. VIIRS_NOAA20_NRT, MODIS_NRT).
func (c *Client) ActiveFires(ctx context.Context, bbox [4]float64, days int, source string) ([]domain.RawRecord, error) {
	// URL scheme: /{key}/{source}/{west},{south},{east},{north}/{days}
	u := fmt.Sprintf("%s/%s/%s/%g,%g,%g,%g/%d",
		c.baseURL, c.apiKey, source, bbox[0], bbox[1], bbox[2], bbox[3], days)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firms request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.EnrichAPIDuration.WithLabelValues("firms").Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("firms API error: status %d: %s", resp.StatusCode, body)
	}

	records, err := parseCSV(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetched active fires",
		"source", source,
		"days", days,
		"count", len(records),
	)
	return records, nil
}

// parseCSV converts the FIRMS CSV payload into raw records. Column order
// varies between sensor sources, so columns are resolved by header name.
func parseCSV(r io.Reader) ([]domain.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // sources differ in column count

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read firms csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil // header only or empty: no detections
	}

	colIdx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(strings.ToLower(h))] = i
	}

	records := make([]domain.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, domain.RawRecord{
			Latitude:   get(row, colIdx, "latitude"),
			Longitude:  get(row, colIdx, "longitude"),
			BrightTI4:  get(row, colIdx, "bright_ti4"),
			Brightness: get(row, colIdx, "brightness"),
			Confidence: get(row, colIdx, "confidence"),
			FRP:        get(row, colIdx, "frp"),
			AcqDate:    get(row, colIdx, "acq_date"),
			AcqTime:    get(row, colIdx, "acq_time"),
			DayNight:   get(row, colIdx, "daynight"),
			Satellite:  get(row, colIdx, "satellite"),
		})
	}
	return records, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
