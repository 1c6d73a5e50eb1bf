package domain

import (
	"context"
	"log/slog"
)

// WeatherProvider supplies fire-relevant weather for a point.
type WeatherProvider interface {
	// FireWeather returns current fire weather near the given WGS84
	// coordinates.
	FireWeather(ctx context.Context, lat, lon float64) (WeatherObservation, error)
}

// AirQualityProvider supplies a current air quality observation for a point.
type AirQualityProvider interface {
	CurrentObservation(ctx context.Context, lat, lon float64) (AirQualityObservation, error)
}

// EnrichWithWeather attempts to attach a weather observation to a detection.
// If the provider is nil or the lookup fails, the detection is returned with
// Weather left nil (graceful degradation); the caller decides whether to
// count the failure.
func EnrichWithWeather(ctx context.Context, det Detection, provider WeatherProvider, logger *slog.Logger) (Detection, bool) {
	if provider == nil {
		return det, true
	}

	obs, err := provider.FireWeather(ctx, det.Latitude, det.Longitude)
	if err != nil {
		logger.Warn("weather enrichment failed",
			"fire_id", det.ID,
			"lat", det.Latitude,
			"lon", det.Longitude,
			"error", err,
		)
		return det, false
	}

	det.Weather = &obs
	return det, true
}

// EnrichWithAirQuality attempts to attach an air quality observation.
// Informational only: it never influences scoring and failures leave the
// field nil.
func EnrichWithAirQuality(ctx context.Context, det Detection, provider AirQualityProvider, logger *slog.Logger) (Detection, bool) {
	if provider == nil {
		return det, true
	}

	obs, err := provider.CurrentObservation(ctx, det.Latitude, det.Longitude)
	if err != nil {
		logger.Warn("air quality enrichment failed",
			"fire_id", det.ID,
			"lat", det.Latitude,
			"lon", det.Longitude,
			"error", err,
		)
		return det, false
	}

	if obs.AQI > 0 {
		det.AirQuality = &obs
	}
	return det, true
}
