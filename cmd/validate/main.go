// Command validate performs data integrity checks across the mock data
// fixtures: raw FIRMS records and scored detections. It verifies record
// counts, ID stability, score ranges, and category consistency by re-running
// the actual domain transformation.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw-json data/mock/firms_raw.json \
//	  -scored-json data/mock/firms_scored.json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
	"github.com/couchcryptid/wildfire-risk-etl/internal/risk"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawJSON := flag.String("raw-json", "", "path to raw FIRMS record JSON fixture")
	scoredJSON := flag.String("scored-json", "", "path to scored detection JSON fixture")
	flag.Parse()

	if *rawJSON == "" || *scoredJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*rawJSON, *scoredJSON); code != 0 {
		os.Exit(code)
	}
}

func run(rawJSONPath, scoredJSONPath string) int {
	// Set a fixed clock matching genmock for ID reproducibility.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.August, 15, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Wildfire Fixture Integrity Validation ===")
	fmt.Println()

	raws, err := loadJSON[domain.RawRecord](rawJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw JSON: %v\n", err)
		return 1
	}

	scored, err := loadJSON[domain.Detection](scoredJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load scored JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateIdentity(scored),
		validateTransformation(raws, scored),
		validateScoring(scored),
		validateCoordinates(scored),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw, %d scored\n", len(raws), len(scored))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Identity ──
// Fire IDs must be present, unique, and derivable from the record's own
// date and coordinates.

func validateIdentity(scored []domain.Detection) *phase {
	p := &phase{name: "Phase 1: Identity (fire IDs)"}

	seen := map[string]int{}
	for i := range scored {
		d := &scored[i]
		if d.ID == "" {
			p.errorf("record %d: missing fire_id", i)
			continue
		}
		if prev, ok := seen[d.ID]; ok {
			p.errorf("record %d: duplicate fire_id %q (first at %d)", i, d.ID, prev)
			continue
		}
		seen[d.ID] = i

		if want := domain.GenerateID(d.AcqDate, d.Latitude, d.Longitude); d.ID != want {
			p.errorf("record %d: fire_id %q not derivable from date+coords (want %q)", i, d.ID, want)
		}
	}
	return p
}

// ── Phase 2: Transformation ──
// Re-runs the domain parse on the raw fixture and cross-references the
// scored fixture by ID.

func validateTransformation(raws []domain.RawRecord, scored []domain.Detection) *phase {
	p := &phase{name: "Phase 2: Transformation (raw vs scored)"}

	scoredByID := map[string]*domain.Detection{}
	for i := range scored {
		scoredByID[scored[i].ID] = &scored[i]
	}

	valid := 0
	for i, raw := range raws {
		det, err := domain.ParseRawRecord(raw)
		if err != nil {
			if !errors.Is(err, domain.ErrMalformedDetection) {
				p.errorf("raw record %d: unexpected parse error: %v", i, err)
			}
			continue
		}
		valid++

		got, ok := scoredByID[det.ID]
		if !ok {
			p.errorf("raw record %d: ID %q not found in scored fixture", i, det.ID)
			continue
		}
		if !floatEq(got.Brightness, det.Brightness) {
			p.errorf("ID %s: brightness: expected %g, got %g", det.ID, det.Brightness, got.Brightness)
		}
		if !floatEq(got.Confidence, det.Confidence) {
			p.errorf("ID %s: confidence: expected %g, got %g", det.ID, det.Confidence, got.Confidence)
		}
		if !floatEq(got.FRP, det.FRP) {
			p.errorf("ID %s: frp: expected %g, got %g", det.ID, det.FRP, got.FRP)
		}
		if !got.AcqDateTime.Equal(det.AcqDateTime) {
			p.errorf("ID %s: acq_datetime: expected %s, got %s",
				det.ID, det.AcqDateTime.Format(time.RFC3339), got.AcqDateTime.Format(time.RFC3339))
		}
	}

	if valid != len(scored) {
		p.errorf("count: %d parseable raw records, %d scored", valid, len(scored))
	}
	return p
}

// ── Phase 3: Scoring ──
// Scores must be in [0,100] with categories consistent with the thresholds.

func validateScoring(scored []domain.Detection) *phase {
	p := &phase{name: "Phase 3: Scoring (range and category)"}

	for i := range scored {
		d := &scored[i]
		if d.RiskScore < 0 || d.RiskScore > 100 {
			p.errorf("ID %s: risk_score %g outside [0,100]", d.ID, d.RiskScore)
		}
		if want := risk.Categorize(d.RiskScore); d.RiskCategory != want {
			p.errorf("ID %s: category %q inconsistent with score %g (want %q)", d.ID, d.RiskCategory, d.RiskScore, want)
		}
		if d.UsesWeather && d.Weather == nil {
			p.errorf("ID %s: uses_weather_data set but no weather observation attached", d.ID)
		}
		if d.Confidence < 0 || d.Confidence > 1 {
			p.errorf("ID %s: confidence %g outside [0,1]", d.ID, d.Confidence)
		}
	}
	return p
}

// ── Phase 4: Coordinates ──

func validateCoordinates(scored []domain.Detection) *phase {
	p := &phase{name: "Phase 4: Coordinates (WGS84 sanity)"}

	for i := range scored {
		d := &scored[i]
		if d.Latitude < -90 || d.Latitude > 90 {
			p.errorf("ID %s: latitude %g out of range", d.ID, d.Latitude)
		}
		if d.Longitude < -180 || d.Longitude > 180 {
			p.errorf("ID %s: longitude %g out of range", d.ID, d.Longitude)
		}
		if d.AcqDate.IsZero() {
			p.errorf("ID %s: acq_date is zero", d.ID)
		}
		if d.ProcessedAt.IsZero() {
			p.errorf("ID %s: processed_at is zero", d.ID)
		}
	}
	return p
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
