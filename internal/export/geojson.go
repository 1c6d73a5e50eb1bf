// Package export writes scored detections and buffer zones as GeoJSON
// feature collections for map visualization.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
	"github.com/couchcryptid/wildfire-risk-etl/internal/risk"
)

const (
	firesFile   = "active_fires.geojson"
	buffersFile = "fire_buffers.geojson"
)

// Exporter writes GeoJSON files into a target directory.
type Exporter struct {
	dir    string
	logger *slog.Logger
}

// NewExporter creates an Exporter rooted at dir.
func NewExporter(dir string, logger *slog.Logger) *Exporter {
	return &Exporter{dir: dir, logger: logger}
}

// Export writes active_fires.geojson and fire_buffers.geojson. Both files
// are fully replaced each run.
func (e *Exporter) Export(fires []domain.Detection, zones []risk.Zone) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	if err := e.writeFires(fires); err != nil {
		return err
	}
	if err := e.writeZones(zones); err != nil {
		return err
	}

	e.logger.Info("exported geojson",
		"dir", e.dir,
		"fires", len(fires),
		"buffers", len(zones),
	)
	return nil
}

func (e *Exporter) writeFires(fires []domain.Detection) error {
	fc := geojson.NewFeatureCollection()
	for _, det := range fires {
		f := geojson.NewFeature(det.Point())
		f.Properties = geojson.Properties{
			"fire_id":       det.ID,
			"brightness":    det.Brightness,
			"confidence":    det.Confidence,
			"frp":           det.FRP,
			"acq_date":      det.AcqDate.Format("2006-01-02"),
			"daynight":      det.DayNight,
			"satellite":     det.Satellite,
			"risk_score":    det.RiskScore,
			"risk_category": det.RiskCategory,
		}
		if det.AirQuality != nil {
			f.Properties["aqi"] = det.AirQuality.AQI
			f.Properties["aqi_category"] = det.AirQuality.Category
		}
		fc.Append(f)
	}
	return e.writeCollection(firesFile, fc)
}

func (e *Exporter) writeZones(zones []risk.Zone) error {
	fc := geojson.NewFeatureCollection()
	for _, zone := range zones {
		f := geojson.NewFeature(zone.Geometry)
		f.Properties = geojson.Properties{
			"buffer_id":     zone.ID,
			"fire_id":       zone.FireID,
			"risk_category": zone.Category,
			"buffer_km":     zone.BufferKM,
		}
		if zone.RiskScore > 0 {
			f.Properties["risk_score"] = zone.RiskScore
		}
		fc.Append(f)
	}
	return e.writeCollection(buffersFile, fc)
}

func (e *Exporter) writeCollection(name string, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
