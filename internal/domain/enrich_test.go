package domain

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWeatherProvider struct {
	obs WeatherObservation
	err error
}

func (s *stubWeatherProvider) FireWeather(_ context.Context, _, _ float64) (WeatherObservation, error) {
	return s.obs, s.err
}

type stubAirQualityProvider struct {
	obs AirQualityObservation
	err error
}

func (s *stubAirQualityProvider) CurrentObservation(_ context.Context, _, _ float64) (AirQualityObservation, error) {
	return s.obs, s.err
}

func TestEnrichWithWeather(t *testing.T) {
	ctx := context.Background()
	det := Detection{ID: "2025-08-14_38.0000_-120.0000", Latitude: 38, Longitude: -120}

	t.Run("nil provider passes through", func(t *testing.T) {
		got, ok := EnrichWithWeather(ctx, det, nil, slog.Default())
		assert.True(t, ok)
		assert.Nil(t, got.Weather)
	})

	t.Run("attaches observation", func(t *testing.T) {
		humidity := 22.0
		provider := &stubWeatherProvider{obs: WeatherObservation{RelativeHumidity: &humidity, GridID: "STO"}}

		got, ok := EnrichWithWeather(ctx, det, provider, slog.Default())
		assert.True(t, ok)
		require.NotNil(t, got.Weather)
		assert.Equal(t, 22.0, *got.Weather.RelativeHumidity)
		assert.Equal(t, "STO", got.Weather.GridID)
	})

	t.Run("failure leaves weather nil", func(t *testing.T) {
		provider := &stubWeatherProvider{err: errors.New("nws down")}

		got, ok := EnrichWithWeather(ctx, det, provider, slog.Default())
		assert.False(t, ok)
		assert.Nil(t, got.Weather)
	})
}

func TestEnrichWithAirQuality(t *testing.T) {
	ctx := context.Background()
	det := Detection{ID: "2025-08-14_38.0000_-120.0000", Latitude: 38, Longitude: -120}

	t.Run("attaches observation", func(t *testing.T) {
		provider := &stubAirQualityProvider{obs: AirQualityObservation{AQI: 152, Pollutant: "PM2.5", Category: "Unhealthy"}}

		got, ok := EnrichWithAirQuality(ctx, det, provider, slog.Default())
		assert.True(t, ok)
		require.NotNil(t, got.AirQuality)
		assert.Equal(t, 152, got.AirQuality.AQI)
	})

	t.Run("zero AQI not attached", func(t *testing.T) {
		provider := &stubAirQualityProvider{obs: AirQualityObservation{}}

		got, ok := EnrichWithAirQuality(ctx, det, provider, slog.Default())
		assert.True(t, ok)
		assert.Nil(t, got.AirQuality)
	})

	t.Run("failure leaves field nil", func(t *testing.T) {
		provider := &stubAirQualityProvider{err: errors.New("airnow down")}

		got, ok := EnrichWithAirQuality(ctx, det, provider, slog.Default())
		assert.False(t, ok)
		assert.Nil(t, got.AirQuality)
	})
}
