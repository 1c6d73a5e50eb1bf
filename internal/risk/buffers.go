package risk

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
	"github.com/couchcryptid/wildfire-risk-etl/internal/geo"
)

// Zone is a geometric risk footprint around one or more detections.
//
// Individual zones keep the originating detection's identity and key scalar
// attributes. Dissolved zones are keyed only by risk category: the
// fire-to-zone mapping is intentionally lost and FireID holds a category
// placeholder.
type Zone struct {
	ID         string       `json:"buffer_id"`
	FireID     string       `json:"fire_id"`
	Category   string       `json:"risk_category"`
	RiskScore  float64      `json:"risk_score,omitempty"`
	AcqDate    time.Time    `json:"acq_date,omitzero"`
	FRP        float64      `json:"frp,omitempty"`
	Brightness float64      `json:"brightness,omitempty"`
	BufferKM   float64      `json:"buffer_km"`
	Geometry   orb.Geometry `json:"-"`
}

// MakeBuffers projects the scored batch to the equal-area plane, buffers
// each detection point by radiusKM, and reprojects to WGS84.
//
// With dissolve unset, one zone per detection is emitted. With dissolve
// set, member buffers are unioned per risk category into a single zone per
// category present (at most three), ordered Low, Moderate, High.
func MakeBuffers(batch []domain.Detection, radiusKM float64, dissolve bool) []Zone {
	if len(batch) == 0 {
		return nil
	}

	radiusM := radiusKM * 1000

	if !dissolve {
		zones := make([]Zone, 0, len(batch))
		for _, det := range batch {
			circle := geo.Circle(geo.ToPlane(det.Point()), radiusM)
			zones = append(zones, Zone{
				ID:         bufferID(det.ID, radiusKM),
				FireID:     det.ID,
				Category:   det.RiskCategory,
				RiskScore:  det.RiskScore,
				AcqDate:    det.AcqDate,
				FRP:        det.FRP,
				Brightness: det.Brightness,
				BufferKM:   radiusKM,
				Geometry:   geo.ToGeographic(circle),
			})
		}
		return zones
	}

	groups := make(map[string]orb.MultiPolygon)
	for _, det := range batch {
		circle := geo.Circle(geo.ToPlane(det.Point()), radiusM)
		groups[det.RiskCategory] = append(groups[det.RiskCategory], circle)
	}

	zones := make([]Zone, 0, len(groups))
	for _, category := range []string{CategoryLow, CategoryModerate, CategoryHigh} {
		union, ok := groups[category]
		if !ok {
			continue
		}
		zones = append(zones, Zone{
			ID:       bufferID(category, radiusKM),
			FireID:   category + "_zone",
			Category: category,
			BufferKM: radiusKM,
			Geometry: geo.ToGeographic(union),
		})
	}
	return zones
}

func bufferID(prefix string, radiusKM float64) string {
	return fmt.Sprintf("%s_buffer_%gkm", prefix, radiusKM)
}
