// Package store persists fire detections and buffer zones in SQLite and
// serves the date-range history queries behind the persistence analysis.
//
// The handle is injected into its consumers and scoped to the process run;
// there is no package-global connection.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb/geojson"
	_ "modernc.org/sqlite"

	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
	"github.com/couchcryptid/wildfire-risk-etl/internal/industrial"
	"github.com/couchcryptid/wildfire-risk-etl/internal/risk"
)

const schema = `
CREATE TABLE IF NOT EXISTS fires (
	fire_id        TEXT PRIMARY KEY,
	latitude       REAL NOT NULL,
	longitude      REAL NOT NULL,
	brightness     REAL,
	confidence     REAL,
	confidence_raw TEXT,
	frp            REAL,
	acq_date       TEXT NOT NULL,
	acq_datetime   TEXT,
	daynight       TEXT,
	satellite      TEXT,
	risk_score     REAL,
	risk_category  TEXT,
	created_at     TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_fires_acq_date ON fires (acq_date);

CREATE TABLE IF NOT EXISTS fire_buffers (
	buffer_id     TEXT PRIMARY KEY,
	fire_id       TEXT,
	buffer_km     REAL,
	risk_category TEXT,
	geom          TEXT,
	created_at    TEXT DEFAULT (datetime('now'))
);
`

// Store wraps the SQLite handle.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the SQLite database at path and applies
// the schema. WAL keeps the analysis reads safe alongside upserts.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertDetections writes scored detections, replacing rows with the same
// fire_id. Returns the number of rows written.
func (s *Store) UpsertDetections(ctx context.Context, batch []domain.Detection) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fires (
			fire_id, latitude, longitude, brightness, confidence, confidence_raw,
			frp, acq_date, acq_datetime, daynight, satellite, risk_score, risk_category
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fire_id) DO UPDATE SET
			brightness = excluded.brightness,
			confidence = excluded.confidence,
			confidence_raw = excluded.confidence_raw,
			frp = excluded.frp,
			acq_datetime = excluded.acq_datetime,
			daynight = excluded.daynight,
			satellite = excluded.satellite,
			risk_score = excluded.risk_score,
			risk_category = excluded.risk_category
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, det := range batch {
		if _, err := stmt.ExecContext(ctx,
			det.ID, det.Latitude, det.Longitude, det.Brightness,
			det.Confidence, det.ConfidenceRaw, det.FRP,
			det.AcqDate.Format("2006-01-02"),
			det.AcqDateTime.Format(time.RFC3339),
			det.DayNight, det.Satellite, det.RiskScore, det.RiskCategory,
		); err != nil {
			return 0, fmt.Errorf("upsert fire %s: %w", det.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(batch), nil
}

// UpsertZones writes buffer zones, replacing rows with the same buffer_id.
// Geometry is stored as GeoJSON text.
func (s *Store) UpsertZones(ctx context.Context, zones []risk.Zone) (int, error) {
	if len(zones) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fire_buffers (buffer_id, fire_id, buffer_km, risk_category, geom)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(buffer_id) DO UPDATE SET
			fire_id = excluded.fire_id,
			buffer_km = excluded.buffer_km,
			risk_category = excluded.risk_category,
			geom = excluded.geom
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, zone := range zones {
		geom, err := json.Marshal(geojson.NewGeometry(zone.Geometry))
		if err != nil {
			return 0, fmt.Errorf("marshal zone geometry %s: %w", zone.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			zone.ID, zone.FireID, zone.BufferKM, zone.Category, string(geom),
		); err != nil {
			return 0, fmt.Errorf("upsert buffer %s: %w", zone.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(zones), nil
}

// ObservationsSince returns the (lat, lon, acq_date) triples of all stored
// detections acquired on or after the given date. Implements
// industrial.HistoryReader.
func (s *Store) ObservationsSince(ctx context.Context, since time.Time) ([]industrial.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT latitude, longitude, acq_date
		FROM fires
		WHERE acq_date >= ?
		ORDER BY acq_date
	`, since.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var observations []industrial.Observation
	for rows.Next() {
		var obs industrial.Observation
		var acqDate string
		if err := rows.Scan(&obs.Latitude, &obs.Longitude, &acqDate); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		obs.AcqDate, err = time.Parse("2006-01-02", acqDate)
		if err != nil {
			return nil, fmt.Errorf("parse acq_date %q: %w", acqDate, err)
		}
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return observations, nil
}
