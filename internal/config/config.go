package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// FIRMS source.
	FIRMSAPIKey  string
	FIRMSSource  string     // e.g. VIIRS_NOAA20_NRT, MODIS_NRT
	FIRMSBBox    [4]float64 // west, south, east, north
	FIRMSDays    int        // lookback for the live fetch, 1-10
	FIRMSTimeout time.Duration

	// Historical store and outputs.
	DatabasePath string
	SnapshotPath string
	ExportDir    string

	// Industrial anomaly analysis.
	LookbackDays       int
	DetectionThreshold int
	GridSizeKM         float64
	IndustrialBufferKM float64

	// Risk scoring and buffering. RiskBufferKM is deliberately a separate
	// knob from IndustrialBufferKM; the two serve different purposes.
	RiskBufferKM    float64
	DissolveBuffers bool
	UseWeather      bool

	// Enrichment providers.
	NOAATimeout       time.Duration
	NOAACacheSize     int
	AirNowAPIKey      string
	AirNowEnabled     bool
	EnrichConcurrency int

	// Kafka sink (optional).
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	// Service.
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	RunInterval     time.Duration
	ShutdownTimeout time.Duration
}

// defaultBBox is the continental US: west, south, east, north.
var defaultBBox = [4]float64{-125, 24, -66, 49}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	firmsTimeout, err := parseDuration("FIRMS_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	noaaTimeout, err := parseDuration("NOAA_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	runInterval, err := parseDuration("RUN_INTERVAL", "3h")
	if err != nil {
		return nil, err
	}

	bbox, err := parseBBox(sharedcfg.EnvOrDefault("FIRMS_BBOX", ""))
	if err != nil {
		return nil, err
	}

	airNowKey := os.Getenv("AIRNOW_API_KEY")
	airNowEnabled := airNowKey != ""
	if v := os.Getenv("AIRNOW_ENABLED"); v != "" {
		airNowEnabled = v == "true"
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		FIRMSAPIKey:  os.Getenv("FIRMS_API_KEY"),
		FIRMSSource:  sharedcfg.EnvOrDefault("FIRMS_SOURCE", "VIIRS_NOAA20_NRT"),
		FIRMSBBox:    bbox,
		FIRMSDays:    parseIntOrDefault("FIRMS_DAYS", 1),
		FIRMSTimeout: firmsTimeout,

		DatabasePath: sharedcfg.EnvOrDefault("DATABASE_PATH", "data/wildfire.db"),
		SnapshotPath: sharedcfg.EnvOrDefault("SNAPSHOT_PATH", "data/static/persistent_anomalies.geojson"),
		ExportDir:    sharedcfg.EnvOrDefault("EXPORT_DIR", "data/processed"),

		LookbackDays:       parseIntOrDefault("LOOKBACK_DAYS", 30),
		DetectionThreshold: parseIntOrDefault("DETECTION_THRESHOLD", 5),
		GridSizeKM:         parseFloatOrDefault("GRID_SIZE_KM", 0.4),
		IndustrialBufferKM: parseFloatOrDefault("INDUSTRIAL_BUFFER_KM", 0.5),

		RiskBufferKM:    parseFloatOrDefault("RISK_BUFFER_KM", 10),
		DissolveBuffers: os.Getenv("DISSOLVE_BUFFERS") == "true",
		UseWeather:      os.Getenv("USE_WEATHER") == "true",

		NOAATimeout:       noaaTimeout,
		NOAACacheSize:     parseIntOrDefault("NOAA_CACHE_SIZE", 1000),
		AirNowAPIKey:      airNowKey,
		AirNowEnabled:     airNowEnabled,
		EnrichConcurrency: parseIntOrDefault("ENRICH_CONCURRENCY", 4),

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "scored-fire-detections"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		RunInterval:     runInterval,
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.FIRMSAPIKey == "" {
		return nil, errors.New("FIRMS_API_KEY is required")
	}
	if cfg.FIRMSDays < 1 || cfg.FIRMSDays > 10 {
		return nil, errors.New("FIRMS_DAYS must be between 1 and 10")
	}
	if cfg.LookbackDays <= 0 {
		return nil, errors.New("LOOKBACK_DAYS must be positive")
	}
	if cfg.DetectionThreshold <= 0 {
		return nil, errors.New("DETECTION_THRESHOLD must be positive")
	}
	if cfg.GridSizeKM <= 0 {
		return nil, errors.New("GRID_SIZE_KM must be positive")
	}
	if cfg.IndustrialBufferKM <= 0 || cfg.RiskBufferKM <= 0 {
		return nil, errors.New("buffer radii must be positive")
	}
	if cfg.EnrichConcurrency <= 0 {
		return nil, errors.New("ENRICH_CONCURRENCY must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.AirNowEnabled && cfg.AirNowAPIKey == "" {
		return nil, errors.New("AIRNOW_ENABLED is true but AIRNOW_API_KEY is not set")
	}

	return cfg, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntOrDefault(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

func parseFloatOrDefault(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return fallback
}

// parseBBox parses "west,south,east,north". Empty input returns the
// continental US default.
func parseBBox(s string) ([4]float64, error) {
	if s == "" {
		return defaultBBox, nil
	}

	var bbox [4]float64
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return bbox, errors.New("FIRMS_BBOX must be west,south,east,north")
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return bbox, fmt.Errorf("invalid FIRMS_BBOX component %q", p)
		}
		bbox[i] = v
	}
	if bbox[0] >= bbox[2] || bbox[1] >= bbox[3] {
		return bbox, errors.New("FIRMS_BBOX is not a valid west,south,east,north box")
	}
	return bbox, nil
}
