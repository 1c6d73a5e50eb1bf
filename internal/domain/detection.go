package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// RawRecord represents one row of the FIRMS area CSV as raw strings.
// VIIRS sources report brightness in the bright_ti4 column, MODIS in
// brightness; the remaining columns are shared.
type RawRecord struct {
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
	BrightTI4  string `json:"bright_ti4"` // VIIRS I-4 band brightness (Kelvin)
	Brightness string `json:"brightness"` // MODIS brightness (Kelvin)
	Confidence string `json:"confidence"` // "l"/"n"/"h" (VIIRS) or 0-100 (MODIS)
	FRP        string `json:"frp"`        // fire radiative power (MW)
	AcqDate    string `json:"acq_date"`   // YYYY-MM-DD
	AcqTime    string `json:"acq_time"`   // HHMM, may be unpadded
	DayNight   string `json:"daynight"`   // "D" or "N"
	Satellite  string `json:"satellite"`
}

// Detection is the domain-rich representation of one satellite thermal
// anomaly observation after parsing.
type Detection struct {
	ID            string    `json:"fire_id"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Brightness    float64   `json:"brightness"` // Kelvin, typically 300-400
	Confidence    float64   `json:"confidence"` // canonical 0.0-1.0
	ConfidenceRaw string    `json:"confidence_raw,omitempty"`
	FRP           float64   `json:"frp"` // megawatts
	AcqDate       time.Time `json:"acq_date"`
	AcqDateTime   time.Time `json:"acq_datetime"`
	DayNight      string    `json:"daynight"`
	Satellite     string    `json:"satellite,omitempty"`

	// Optional enrichment attachments; nil when the provider is disabled
	// or the per-detection lookup failed.
	Weather    *WeatherObservation    `json:"weather,omitempty"`
	AirQuality *AirQualityObservation `json:"air_quality,omitempty"`

	// Risk attributes, attached by the scorer.
	RiskScore    float64 `json:"risk_score"`
	RiskCategory string  `json:"risk_category,omitempty"`
	UsesWeather  bool    `json:"uses_weather_data"`

	ProcessedAt time.Time `json:"processed_at"`
}

// Point returns the detection's WGS84 point geometry in lon/lat order.
func (d Detection) Point() orb.Point {
	return orb.Point{d.Longitude, d.Latitude}
}

// WeatherObservation holds fire-relevant weather fields for a point.
// Pointer fields are nil when the provider did not report a value; the
// scorer substitutes neutral defaults rather than failing.
type WeatherObservation struct {
	RelativeHumidity  *float64 `json:"relative_humidity,omitempty"`  // percent
	WindSpeedKMH      *float64 `json:"wind_speed_kmh,omitempty"`     // km/h
	PrecipProbability *float64 `json:"precip_probability,omitempty"` // percent
	FireDangerIndex   *float64 `json:"fire_danger_index,omitempty"`  // 0-100
	Temperature       *float64 `json:"temperature_c,omitempty"`      // Celsius
	GridID            string   `json:"grid_id,omitempty"`            // NWS forecast office
}

// AirQualityObservation holds a current air quality reading near a point.
type AirQualityObservation struct {
	AQI       int    `json:"aqi"`
	Pollutant string `json:"pollutant,omitempty"` // e.g. "PM2.5"
	Category  string `json:"category,omitempty"`  // e.g. "Unhealthy"
}
