// Package industrial separates genuine wildfires from industrial heat
// sources (steel plants, refineries, gas flares) that repeatedly trigger
// satellite fire sensors. It has two halves: a grid-based persistence
// analysis over historical detections, and a geometric filter that
// partitions live batches against the flagged locations.
package industrial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
)

// ErrDataUnavailable indicates the historical detection store could not be
// queried. Distinct from an empty analysis result: "no anomalies" and
// "couldn't check" must never be conflated.
var ErrDataUnavailable = errors.New("historical detection store unavailable")

// kmPerDegree converts the configured grid size to a degree step at the
// equator. The grid is an aggregation bucket, not a measurement, so the
// latitude-dependent shrink of longitudinal cells is acceptable.
const kmPerDegree = 111.32

// Observation is the minimal historical record the detector aggregates:
// where and on which calendar day a detection occurred.
type Observation struct {
	Latitude  float64
	Longitude float64
	AcqDate   time.Time
}

// HistoryReader queries the historical detection store by date range.
type HistoryReader interface {
	ObservationsSince(ctx context.Context, since time.Time) ([]Observation, error)
}

// PersistentLocation is a flagged candidate industrial heat source: a grid
// cell whose detection density over the lookback window exceeded the
// threshold.
type PersistentLocation struct {
	Latitude         float64   `json:"latitude"`  // centroid of contributing detections
	Longitude        float64   `json:"longitude"` // not the grid cell corner
	DetectionCount   int       `json:"detection_count"`
	UniqueDays       int       `json:"unique_days"`
	DetectionsPerDay float64   `json:"detections_per_day"`
	FirstDetection   time.Time `json:"first_detection"`
	LastDetection    time.Time `json:"last_detection"`
}

// Point returns the location's WGS84 point geometry in lon/lat order.
func (l PersistentLocation) Point() orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}

// DetectorConfig holds the persistence analysis parameters.
type DetectorConfig struct {
	LookbackDays       int     // history window, days
	DetectionThreshold int     // minimum detections to flag a cell
	GridSizeKM         float64 // grid cell size, km equivalent in degrees
}

// Detector runs the persistent anomaly analysis against a history store.
type Detector struct {
	history HistoryReader
	cfg     DetectorConfig
	logger  *slog.Logger
	clock   clockwork.Clock
}

// NewDetector creates a Detector. Pass a fake clock in tests to pin the
// lookback window.
func NewDetector(history HistoryReader, cfg DetectorConfig, logger *slog.Logger, clock clockwork.Clock) *Detector {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Detector{history: history, cfg: cfg, logger: logger, clock: clock}
}

// gridCell accumulates the detections snapped to one grid bucket.
type gridCell struct {
	count     int
	sumLat    float64
	sumLon    float64
	days      map[string]struct{}
	firstDate time.Time
	lastDate  time.Time
}

type cellKey struct {
	lat int64
	lon int64
}

// IdentifyPersistentAnomalies aggregates historical detections on a grid
// and flags cells whose detection count over the lookback window meets the
// threshold. Results are ordered by descending detection count (ties by
// cell coordinates) so top-N reports are reproducible.
//
// An empty window or zero qualifying cells is a valid empty result; a store
// failure wraps ErrDataUnavailable.
func (d *Detector) IdentifyPersistentAnomalies(ctx context.Context) ([]PersistentLocation, error) {
	since := d.clock.Now().UTC().AddDate(0, 0, -d.cfg.LookbackDays)

	observations, err := d.history.ObservationsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	if len(observations) == 0 {
		d.logger.Info("no history in lookback window",
			"lookback_days", d.cfg.LookbackDays)
		return nil, nil
	}

	step := d.cfg.GridSizeKM / kmPerDegree

	cells := make(map[cellKey]*gridCell)
	for _, obs := range observations {
		key := cellKey{
			lat: int64(math.Floor(obs.Latitude / step)),
			lon: int64(math.Floor(obs.Longitude / step)),
		}

		cell, ok := cells[key]
		if !ok {
			cell = &gridCell{days: make(map[string]struct{}), firstDate: obs.AcqDate, lastDate: obs.AcqDate}
			cells[key] = cell
		}

		cell.count++
		cell.sumLat += obs.Latitude
		cell.sumLon += obs.Longitude
		cell.days[obs.AcqDate.Format("2006-01-02")] = struct{}{}
		if obs.AcqDate.Before(cell.firstDate) {
			cell.firstDate = obs.AcqDate
		}
		if obs.AcqDate.After(cell.lastDate) {
			cell.lastDate = obs.AcqDate
		}
	}

	locations := make([]PersistentLocation, 0, len(cells))
	for _, cell := range cells {
		if cell.count < d.cfg.DetectionThreshold {
			continue
		}
		perDay := float64(cell.count) / float64(len(cell.days))
		locations = append(locations, PersistentLocation{
			Latitude:         cell.sumLat / float64(cell.count),
			Longitude:        cell.sumLon / float64(cell.count),
			DetectionCount:   cell.count,
			UniqueDays:       len(cell.days),
			DetectionsPerDay: math.Round(perDay*100) / 100,
			FirstDetection:   cell.firstDate,
			LastDetection:    cell.lastDate,
		})
	}

	sort.Slice(locations, func(i, j int) bool {
		if locations[i].DetectionCount != locations[j].DetectionCount {
			return locations[i].DetectionCount > locations[j].DetectionCount
		}
		if locations[i].Latitude != locations[j].Latitude {
			return locations[i].Latitude < locations[j].Latitude
		}
		return locations[i].Longitude < locations[j].Longitude
	})

	if len(locations) == 0 {
		d.logger.Info("no persistent anomalies found",
			"detection_threshold", d.cfg.DetectionThreshold,
			"lookback_days", d.cfg.LookbackDays)
		return nil, nil
	}

	d.logger.Info("identified persistent thermal anomalies",
		"count", len(locations),
		"lookback_days", d.cfg.LookbackDays,
		"detection_threshold", d.cfg.DetectionThreshold,
		"grid_size_km", d.cfg.GridSizeKM,
	)
	return locations, nil
}
