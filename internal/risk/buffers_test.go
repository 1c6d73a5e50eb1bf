package risk

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
	"github.com/couchcryptid/wildfire-risk-etl/internal/geo"
)

func testBatch() []domain.Detection {
	acq := time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)
	return []domain.Detection{
		{ID: "2025-08-14_38.1000_-120.5000", Latitude: 38.1, Longitude: -120.5, RiskScore: 12, RiskCategory: CategoryLow, AcqDate: acq, FRP: 5, Brightness: 310},
		{ID: "2025-08-14_38.2000_-120.6000", Latitude: 38.2, Longitude: -120.6, RiskScore: 45, RiskCategory: CategoryModerate, AcqDate: acq, FRP: 60, Brightness: 340},
		{ID: "2025-08-14_38.3000_-120.7000", Latitude: 38.3, Longitude: -120.7, RiskScore: 80, RiskCategory: CategoryHigh, AcqDate: acq, FRP: 300, Brightness: 380},
		{ID: "2025-08-14_38.4000_-120.8000", Latitude: 38.4, Longitude: -120.8, RiskScore: 71, RiskCategory: CategoryHigh, AcqDate: acq, FRP: 150, Brightness: 365},
	}
}

func TestMakeBuffers_Individual(t *testing.T) {
	batch := testBatch()
	zones := MakeBuffers(batch, 10, false)

	require.Len(t, zones, len(batch))

	for i, zone := range zones {
		det := batch[i]
		assert.Equal(t, det.ID+"_buffer_10km", zone.ID)
		assert.Equal(t, det.ID, zone.FireID)
		assert.Equal(t, det.RiskCategory, zone.Category)
		assert.Equal(t, det.RiskScore, zone.RiskScore)
		assert.Equal(t, det.FRP, zone.FRP)
		assert.Equal(t, 10.0, zone.BufferKM)

		poly, ok := zone.Geometry.(orb.Polygon)
		require.True(t, ok)
		// The detection point must lie inside its own buffer.
		assert.True(t, planar.PolygonContains(projectPolygon(poly), geo.ToPlane(det.Point())))
	}
}

func TestMakeBuffers_Dissolved(t *testing.T) {
	t.Run("one zone per category present, ordered", func(t *testing.T) {
		zones := MakeBuffers(testBatch(), 10, true)

		require.Len(t, zones, 3)
		assert.Equal(t, CategoryLow, zones[0].Category)
		assert.Equal(t, CategoryModerate, zones[1].Category)
		assert.Equal(t, CategoryHigh, zones[2].Category)

		assert.Equal(t, "Low_buffer_10km", zones[0].ID)
		assert.Equal(t, "High_zone", zones[2].FireID)

		// Two high-risk detections dissolve into one multipolygon.
		mp, ok := zones[2].Geometry.(orb.MultiPolygon)
		require.True(t, ok)
		assert.Len(t, mp, 2)
	})

	t.Run("absent categories yield no zone", func(t *testing.T) {
		batch := testBatch()[2:3] // High only
		zones := MakeBuffers(batch, 5, true)

		require.Len(t, zones, 1)
		assert.Equal(t, CategoryHigh, zones[0].Category)
	})
}

func TestMakeBuffers_EmptyBatch(t *testing.T) {
	assert.Nil(t, MakeBuffers(nil, 10, false))
	assert.Nil(t, MakeBuffers(nil, 10, true))
}

func TestMakeBuffers_RadiusInID(t *testing.T) {
	batch := testBatch()[:1]

	zones := MakeBuffers(batch, 2.5, false)
	require.Len(t, zones, 1)
	assert.Equal(t, batch[0].ID+"_buffer_2.5km", zones[0].ID)
	assert.Equal(t, 2.5, zones[0].BufferKM)
}

// projectPolygon maps a WGS84 polygon back to the equal-area plane for
// planar containment checks.
func projectPolygon(poly orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(poly))
	for i, ring := range poly {
		r := make(orb.Ring, len(ring))
		for j, p := range ring {
			r[j] = geo.ToPlane(p)
		}
		out[i] = r
	}
	return out
}
