package industrial

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SnapshotStore reads and writes the persistent-location reference dataset
// as a GeoJSON feature collection. Saves are full replacements, serialized
// by a write lock; the analysis never merges incrementally.
type SnapshotStore struct {
	path string
	mu   sync.Mutex
}

// NewSnapshotStore creates a store backed by the given GeoJSON file path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Save replaces the snapshot file with the given locations.
func (s *SnapshotStore) Save(locations []PersistentLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	for _, loc := range locations {
		f := geojson.NewFeature(loc.Point())
		f.Properties = geojson.Properties{
			"detection_count":    loc.DetectionCount,
			"unique_days":        loc.UniqueDays,
			"detections_per_day": loc.DetectionsPerDay,
			"first_detection":    loc.FirstDetection.Format("2006-01-02"),
			"last_detection":     loc.LastDetection.Format("2006-01-02"),
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal persistent locations: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot file. A missing file returns (nil, os.ErrNotExist
// wrapped): callers treat that as "recompute", not as a failure.
func (s *SnapshotStore) Load() ([]PersistentLocation, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	locations := make([]PersistentLocation, 0, len(fc.Features))
	for _, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		loc := PersistentLocation{
			Longitude:        pt[0],
			Latitude:         pt[1],
			DetectionCount:   int(propFloat(f.Properties, "detection_count")),
			UniqueDays:       int(propFloat(f.Properties, "unique_days")),
			DetectionsPerDay: propFloat(f.Properties, "detections_per_day"),
		}
		if t, err := time.Parse("2006-01-02", propString(f.Properties, "first_detection")); err == nil {
			loc.FirstDetection = t
		}
		if t, err := time.Parse("2006-01-02", propString(f.Properties, "last_detection")); err == nil {
			loc.LastDetection = t
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

func propFloat(p geojson.Properties, key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func propString(p geojson.Properties, key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}
