package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-firms-key"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FIRMS_API_KEY", testAPIKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testAPIKey, cfg.FIRMSAPIKey)
	assert.Equal(t, "VIIRS_NOAA20_NRT", cfg.FIRMSSource)
	assert.Equal(t, defaultBBox, cfg.FIRMSBBox)
	assert.Equal(t, 1, cfg.FIRMSDays)
	assert.Equal(t, 30*time.Second, cfg.FIRMSTimeout)

	assert.Equal(t, "data/wildfire.db", cfg.DatabasePath)
	assert.Equal(t, "data/static/persistent_anomalies.geojson", cfg.SnapshotPath)
	assert.Equal(t, "data/processed", cfg.ExportDir)

	assert.Equal(t, 30, cfg.LookbackDays)
	assert.Equal(t, 5, cfg.DetectionThreshold)
	assert.Equal(t, 0.4, cfg.GridSizeKM)
	assert.Equal(t, 0.5, cfg.IndustrialBufferKM)

	assert.Equal(t, 10.0, cfg.RiskBufferKM)
	assert.False(t, cfg.DissolveBuffers)
	assert.False(t, cfg.UseWeather)

	assert.Equal(t, 10*time.Second, cfg.NOAATimeout)
	assert.Equal(t, 1000, cfg.NOAACacheSize)
	assert.False(t, cfg.AirNowEnabled)
	assert.Equal(t, 4, cfg.EnrichConcurrency)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "scored-fire-detections", cfg.KafkaSinkTopic)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 3*time.Hour, cfg.RunInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("FIRMS_API_KEY", testAPIKey)
	t.Setenv("FIRMS_SOURCE", "MODIS_NRT")
	t.Setenv("FIRMS_BBOX", "-125,32,-114,42")
	t.Setenv("FIRMS_DAYS", "3")
	t.Setenv("LOOKBACK_DAYS", "60")
	t.Setenv("DETECTION_THRESHOLD", "10")
	t.Setenv("GRID_SIZE_KM", "0.8")
	t.Setenv("INDUSTRIAL_BUFFER_KM", "1.0")
	t.Setenv("RISK_BUFFER_KM", "25")
	t.Setenv("DISSOLVE_BUFFERS", "true")
	t.Setenv("USE_WEATHER", "true")
	t.Setenv("ENRICH_CONCURRENCY", "8")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("RUN_INTERVAL", "1h")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "MODIS_NRT", cfg.FIRMSSource)
	assert.Equal(t, [4]float64{-125, 32, -114, 42}, cfg.FIRMSBBox)
	assert.Equal(t, 3, cfg.FIRMSDays)
	assert.Equal(t, 60, cfg.LookbackDays)
	assert.Equal(t, 10, cfg.DetectionThreshold)
	assert.Equal(t, 0.8, cfg.GridSizeKM)
	assert.Equal(t, 1.0, cfg.IndustrialBufferKM)
	assert.Equal(t, 25.0, cfg.RiskBufferKM)
	assert.True(t, cfg.DissolveBuffers)
	assert.True(t, cfg.UseWeather)
	assert.Equal(t, 8, cfg.EnrichConcurrency)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, time.Hour, cfg.RunInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIRMS_API_KEY")
}

func TestLoad_InvalidDays(t *testing.T) {
	t.Setenv("FIRMS_API_KEY", testAPIKey)
	t.Setenv("FIRMS_DAYS", "11")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIRMS_DAYS")
}

func TestLoad_InvalidThreshold(t *testing.T) {
	t.Setenv("FIRMS_API_KEY", testAPIKey)
	t.Setenv("DETECTION_THRESHOLD", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DETECTION_THRESHOLD")
}

func TestLoad_InvalidRunInterval(t *testing.T) {
	t.Setenv("FIRMS_API_KEY", testAPIKey)
	t.Setenv("RUN_INTERVAL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUN_INTERVAL")
}

func TestLoad_AirNowKeyImpliesEnabled(t *testing.T) {
	t.Setenv("FIRMS_API_KEY", testAPIKey)
	t.Setenv("AIRNOW_API_KEY", "airnow-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AirNowEnabled)
}

func TestLoad_AirNowExplicitlyDisabled(t *testing.T) {
	t.Setenv("FIRMS_API_KEY", testAPIKey)
	t.Setenv("AIRNOW_API_KEY", "airnow-key")
	t.Setenv("AIRNOW_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.AirNowEnabled)
}

func TestLoad_AirNowEnabledWithoutKey(t *testing.T) {
	t.Setenv("FIRMS_API_KEY", testAPIKey)
	t.Setenv("AIRNOW_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AIRNOW_API_KEY")
}

func TestParseBBox(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    [4]float64
		wantErr bool
	}{
		{"empty uses default", "", defaultBBox, false},
		{"california", "-125, 32, -114, 42", [4]float64{-125, 32, -114, 42}, false},
		{"too few parts", "-125,32,-114", [4]float64{}, true},
		{"non-numeric", "-125,32,x,42", [4]float64{}, true},
		{"inverted box", "-114,32,-125,42", [4]float64{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBBox(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
