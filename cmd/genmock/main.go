// Command genmock reads a NASA FIRMS area CSV export and generates mock
// data fixtures for the test suites. It runs the actual domain parsing and
// scoring so the fixtures match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv testdata/firms_sample.csv \
//	  -raw-out data/mock/firms_raw.json \
//	  -scored-out data/mock/firms_scored.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
	"github.com/couchcryptid/wildfire-risk-etl/internal/risk"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "FIRMS area CSV export")
	rawOut := flag.String("raw-out", "", "output path for raw record JSON fixture")
	scoredOut := flag.String("scored-out", "", "output path for scored detection JSON fixture")
	flag.Parse()

	if *csvPath == "" || *rawOut == "" || *scoredOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -raw-out, -scored-out")
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.August, 15, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	raws, err := readCSV(*csvPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *csvPath, err)
	}
	log.Printf("read %d raw records", len(raws))

	scorer := risk.NewScorer(false)
	detections := make([]domain.Detection, 0, len(raws))
	malformed := 0
	for _, raw := range raws {
		det, err := domain.ParseRawRecord(raw)
		if err != nil {
			malformed++
			continue
		}
		detections = append(detections, det)
	}
	detections = scorer.Score(detections)
	log.Printf("parsed %d detections (%d malformed)", len(detections), malformed)

	if err := writeJSON(*rawOut, raws); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*scoredOut, detections); err != nil {
		return fmt.Errorf("writing scored fixture: %w", err)
	}
	log.Printf("wrote scored fixture: %s", *scoredOut)

	printStats(detections)
	return nil
}

func readCSV(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(strings.ToLower(h))] = i
	}

	raws := make([]domain.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		raws = append(raws, domain.RawRecord{
			Latitude:   get(row, colIdx, "latitude"),
			Longitude:  get(row, colIdx, "longitude"),
			BrightTI4:  get(row, colIdx, "bright_ti4"),
			Brightness: get(row, colIdx, "brightness"),
			Confidence: get(row, colIdx, "confidence"),
			FRP:        get(row, colIdx, "frp"),
			AcqDate:    get(row, colIdx, "acq_date"),
			AcqTime:    get(row, colIdx, "acq_time"),
			DayNight:   get(row, colIdx, "daynight"),
			Satellite:  get(row, colIdx, "satellite"),
		})
	}
	return raws, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(detections []domain.Detection) {
	categoryCounts := map[string]int{}
	daynightCounts := map[string]int{}
	var minScore, maxScore float64
	var nightCount int

	for i := range detections {
		d := &detections[i]
		categoryCounts[d.RiskCategory]++
		daynightCounts[d.DayNight]++
		if i == 0 || d.RiskScore < minScore {
			minScore = d.RiskScore
		}
		if d.RiskScore > maxScore {
			maxScore = d.RiskScore
		}
		if d.DayNight == "N" {
			nightCount++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(detections))
	fmt.Printf("By category: Low=%d, Moderate=%d, High=%d\n",
		categoryCounts[risk.CategoryLow], categoryCounts[risk.CategoryModerate], categoryCounts[risk.CategoryHigh])
	fmt.Printf("Score range: %.2f - %.2f\n", minScore, maxScore)
	fmt.Printf("Night detections: %d\n", nightCount)

	if len(detections) > 0 {
		d := &detections[0]
		fmt.Printf("\nFirst detection:\n")
		fmt.Printf("  ID: %s\n", d.ID)
		fmt.Printf("  Lat: %g, Lon: %g\n", d.Latitude, d.Longitude)
		fmt.Printf("  Brightness: %g, Confidence: %g, FRP: %g\n", d.Brightness, d.Confidence, d.FRP)
		fmt.Printf("  Score: %.2f (%s)\n", d.RiskScore, d.RiskCategory)
		fmt.Printf("  AcqDateTime: %s\n", d.AcqDateTime.Format(time.RFC3339))
	}
}
