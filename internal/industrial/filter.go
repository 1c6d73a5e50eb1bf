package industrial

import (
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
	"github.com/couchcryptid/wildfire-risk-etl/internal/geo"
)

// Partition splits a live detection batch into (retained, excluded):
// detections inside the buffered union of persistent locations are excluded
// as likely industrial, the rest are retained as probable wildfires.
//
// The buffer radius is small (sub-kilometer) and accounts for sensor pixel
// drift only; the risk buffer radius in the zone generator is a separate,
// independently configured parameter.
//
// The partition is exhaustive and disjoint: every input detection lands in
// exactly one of the two outputs. An empty location set disables the filter
// and returns the whole batch retained.
func Partition(batch []domain.Detection, locations []PersistentLocation, bufferKM float64, logger *slog.Logger) (retained, excluded []domain.Detection) {
	if len(batch) == 0 {
		return nil, nil
	}
	if len(locations) == 0 {
		logger.Info("no persistent locations, industrial filter disabled")
		return batch, nil
	}

	points := make([]orb.Point, len(locations))
	for i, loc := range locations {
		points[i] = loc.Point()
	}
	union := geo.BufferedUnion(points, bufferKM*1000)

	retained = make([]domain.Detection, 0, len(batch))
	for _, det := range batch {
		if geo.ContainsProjected(union, geo.ToPlane(det.Point())) {
			excluded = append(excluded, det)
			continue
		}
		retained = append(retained, det)
	}

	logger.Info("industrial filter applied",
		"excluded", len(excluded),
		"retained", len(retained),
		"buffer_km", bufferKM,
		"persistent_locations", len(locations),
	)
	return retained, excluded
}
