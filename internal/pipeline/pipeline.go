// Package pipeline orchestrates the fetch-filter-score-load cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/wildfire-risk-etl/internal/config"
	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
	"github.com/couchcryptid/wildfire-risk-etl/internal/industrial"
	"github.com/couchcryptid/wildfire-risk-etl/internal/observability"
	"github.com/couchcryptid/wildfire-risk-etl/internal/risk"
)

// FireSource fetches raw detection records from the satellite fire API.
type FireSource interface {
	ActiveFires(ctx context.Context, bbox [4]float64, days int, source string) ([]domain.RawRecord, error)
}

// DetectionStore persists scored detections and buffer zones.
type DetectionStore interface {
	UpsertDetections(ctx context.Context, batch []domain.Detection) (int, error)
	UpsertZones(ctx context.Context, zones []risk.Zone) (int, error)
}

// Publisher pushes scored detections to the downstream sink.
type Publisher interface {
	PublishBatch(ctx context.Context, batch []domain.Detection) error
}

// Exporter writes the per-run GeoJSON artifacts.
type Exporter interface {
	Export(fires []domain.Detection, zones []risk.Zone) error
}

// AnomalySnapshot loads and saves the persistent-location reference dataset.
type AnomalySnapshot interface {
	Load() ([]industrial.PersistentLocation, error)
	Save(locations []industrial.PersistentLocation) error
}

// Pipeline wires the ETL stages together and runs them on an interval.
type Pipeline struct {
	source     FireSource
	detector   *industrial.Detector
	snapshot   AnomalySnapshot
	scorer     *risk.Scorer
	store      DetectionStore
	publisher  Publisher // nil when the Kafka sink is disabled
	exporter   Exporter
	weather    domain.WeatherProvider    // nil when weather enrichment is disabled
	airQuality domain.AirQualityProvider // nil when AirNow is disabled

	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// Deps bundles the pipeline's collaborators for construction.
type Deps struct {
	Source     FireSource
	Detector   *industrial.Detector
	Snapshot   AnomalySnapshot
	Scorer     *risk.Scorer
	Store      DetectionStore
	Publisher  Publisher
	Exporter   Exporter
	Weather    domain.WeatherProvider
	AirQuality domain.AirQualityProvider
}

// New creates a Pipeline.
func New(deps Deps, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		detector:   deps.Detector,
		snapshot:   deps.Snapshot,
		scorer:     deps.Scorer,
		store:      deps.Store,
		publisher:  deps.Publisher,
		exporter:   deps.Exporter,
		weather:    deps.Weather,
		airQuality: deps.AirQuality,
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once at least one run has completed, or an
// error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Run executes RunOnce immediately, then on every interval tick until the
// context is cancelled. Failed runs retry with exponential backoff instead
// of waiting a full interval.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"interval", p.cfg.RunInterval,
		"source", p.cfg.FIRMSSource,
		"use_weather", p.cfg.UseWeather,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Backoff keeps retries frequent relative to the multi-hour run
	// interval without hammering a failing upstream.
	const initialBackoff = 30 * time.Second
	const maxBackoff = 10 * time.Minute
	backoff := initialBackoff

	for {
		if err := p.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			p.metrics.RunErrors.Inc()
			p.logger.Error("run failed", "error", err, "retry_in", backoff)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}

		backoff = initialBackoff
		p.ready.Store(true)

		if !sleepWithContext(ctx, p.cfg.RunInterval) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunOnce executes a single fetch-filter-score-load cycle.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	start := time.Now()

	raws, err := p.source.ActiveFires(ctx, p.cfg.FIRMSBBox, p.cfg.FIRMSDays, p.cfg.FIRMSSource)
	if err != nil {
		return fmt.Errorf("fetch active fires: %w", err)
	}
	p.metrics.DetectionsFetched.Add(float64(len(raws)))
	p.metrics.BatchSize.Observe(float64(len(raws)))

	batch, malformed := p.parseBatch(raws)
	if len(batch) == 0 {
		p.logger.Info("no detections in batch", "raw", len(raws), "malformed", malformed)
		p.metrics.RunDuration.Observe(time.Since(start).Seconds())
		return nil
	}

	locations := p.persistentLocations(ctx)
	retained, excluded := industrial.Partition(batch, locations, p.cfg.IndustrialBufferKM, p.logger)
	p.metrics.DetectionsExcluded.Add(float64(len(excluded)))

	retained = p.enrichBatch(ctx, retained)
	scored := p.scorer.Score(retained)
	p.metrics.DetectionsScored.Add(float64(len(scored)))

	zones := risk.MakeBuffers(scored, p.cfg.RiskBufferKM, p.cfg.DissolveBuffers)
	p.metrics.BuffersGenerated.Add(float64(len(zones)))

	if _, err := p.store.UpsertDetections(ctx, scored); err != nil {
		return fmt.Errorf("store detections: %w", err)
	}
	if _, err := p.store.UpsertZones(ctx, zones); err != nil {
		return fmt.Errorf("store buffers: %w", err)
	}

	if p.publisher != nil {
		if err := p.publisher.PublishBatch(ctx, scored); err != nil {
			return fmt.Errorf("publish detections: %w", err)
		}
		p.metrics.DetectionsPublished.Add(float64(len(scored)))
	}

	if err := p.exporter.Export(scored, zones); err != nil {
		return fmt.Errorf("export geojson: %w", err)
	}

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("run complete",
		"raw", len(raws),
		"malformed", malformed,
		"excluded_industrial", len(excluded),
		"scored", len(scored),
		"buffers", len(zones),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// parseBatch converts raw records to detections, skipping malformed rows.
func (p *Pipeline) parseBatch(raws []domain.RawRecord) ([]domain.Detection, int) {
	batch := make([]domain.Detection, 0, len(raws))
	malformed := 0
	for _, raw := range raws {
		det, err := domain.ParseRawRecord(raw)
		if err != nil {
			p.logger.Warn("skipping malformed record", "error", err)
			p.metrics.DetectionsMalformed.Inc()
			malformed++
			continue
		}
		batch = append(batch, det)
	}
	return batch, malformed
}

// persistentLocations returns the industrial filter's reference dataset.
// It prefers the saved snapshot; when absent it recomputes the analysis
// from stored history and saves the result. A history store failure
// degrades to an empty set, which disables the filter for this run rather
// than failing it.
func (p *Pipeline) persistentLocations(ctx context.Context) []industrial.PersistentLocation {
	if locations, err := p.snapshot.Load(); err == nil {
		p.logger.Info("loaded persistent locations snapshot", "count", len(locations))
		return locations
	}

	locations, err := p.detector.IdentifyPersistentAnomalies(ctx)
	if err != nil {
		p.logger.Warn("persistence analysis unavailable, industrial filter skipped", "error", err)
		return nil
	}
	if len(locations) == 0 {
		return nil
	}

	if err := p.snapshot.Save(locations); err != nil {
		p.logger.Warn("saving persistent locations snapshot failed", "error", err)
	}
	return locations
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
