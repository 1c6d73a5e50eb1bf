// Package risk scores fire detections for wildfire risk and generates
// geometric risk footprints around them.
package risk

import (
	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
)

// Risk categories assigned from the composite score.
const (
	CategoryLow      = "Low"      // [0, 30)
	CategoryModerate = "Moderate" // [30, 60)
	CategoryHigh     = "High"     // [60, 100]
)

// Base weights, used when no weather observation is attached.
var baseWeights = struct {
	brightness, confidence, frp, daynight float64
}{0.3, 0.2, 0.3, 0.2}

// Enhanced weights, used when a weather observation is attached.
// Both sets sum to 1.0 so the composite stays a convex combination.
var enhancedWeights = struct {
	brightness, confidence, frp, daynight          float64
	humidity, wind, precipitation, fireDanger      float64
}{0.20, 0.15, 0.20, 0.10, 0.15, 0.10, 0.05, 0.05}

// Neutral fills for missing weather sub-fields.
const (
	neutralHumidityPct    = 50.0
	neutralWindKMH        = 0.0
	neutralPrecipPct      = 0.0
	neutralFireDangerNorm = 0.5
)

// Scorer computes composite risk scores. With UseWeather set, detections
// carrying a weather observation are scored with the enhanced weight set;
// detections without one fall back to base mode unconditionally.
type Scorer struct {
	UseWeather bool
}

// NewScorer creates a Scorer.
func NewScorer(useWeather bool) *Scorer {
	return &Scorer{UseWeather: useWeather}
}

// Score attaches risk_score, risk_category, and the weather-mode flag to
// every detection in the batch. It never fails: missing optional fields get
// neutral defaults.
func (s *Scorer) Score(batch []domain.Detection) []domain.Detection {
	scored := make([]domain.Detection, len(batch))
	for i, det := range batch {
		scored[i] = s.scoreOne(det)
	}
	return scored
}

func (s *Scorer) scoreOne(det domain.Detection) domain.Detection {
	brightness := clip((det.Brightness-300)/100, 0, 1)
	confidence := clip(det.Confidence, 0, 1)
	frp := clip(det.FRP/500, 0, 1)
	daynight := daynightNorm(det.DayNight)

	if !s.UseWeather || det.Weather == nil {
		det.RiskScore = 100 * (brightness*baseWeights.brightness +
			confidence*baseWeights.confidence +
			frp*baseWeights.frp +
			daynight*baseWeights.daynight)
		det.RiskCategory = Categorize(det.RiskScore)
		det.UsesWeather = false
		return det
	}

	w := det.Weather
	humidity := clip(1-valueOr(w.RelativeHumidity, neutralHumidityPct)/100, 0, 1)
	wind := clip(valueOr(w.WindSpeedKMH, neutralWindKMH)/60, 0, 1)
	precip := clip(1-valueOr(w.PrecipProbability, neutralPrecipPct)/100, 0, 1)

	fireDanger := neutralFireDangerNorm
	if w.FireDangerIndex != nil {
		fireDanger = clip(*w.FireDangerIndex/100, 0, 1)
	}

	det.RiskScore = 100 * (brightness*enhancedWeights.brightness +
		confidence*enhancedWeights.confidence +
		frp*enhancedWeights.frp +
		daynight*enhancedWeights.daynight +
		humidity*enhancedWeights.humidity +
		wind*enhancedWeights.wind +
		precip*enhancedWeights.precipitation +
		fireDanger*enhancedWeights.fireDanger)
	det.RiskCategory = Categorize(det.RiskScore)
	det.UsesWeather = true
	return det
}

// Categorize maps a composite score to its risk category:
// [0,30) Low, [30,60) Moderate, [60,100] High.
func Categorize(score float64) string {
	switch {
	case score < 30:
		return CategoryLow
	case score < 60:
		return CategoryModerate
	default:
		return CategoryHigh
	}
}

// daynightNorm weights nighttime detections higher: a sensor still seeing
// fire at night implies sustained combustion.
func daynightNorm(flag string) float64 {
	if flag == "N" {
		return 1.0
	}
	return 0.5
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
