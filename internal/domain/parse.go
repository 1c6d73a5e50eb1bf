package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedDetection marks a record missing the fields required for grid
// assignment or scoring (coordinates, acquisition date). Such records are
// skipped individually; they never fail a batch.
var ErrMalformedDetection = errors.New("malformed detection record")

// confidence categories reported by VIIRS sensors.
var confidenceCategories = map[string]float64{
	"l": 0.33, // low
	"n": 0.66, // nominal
	"h": 1.0,  // high
}

// ParseRawRecord converts a raw FIRMS CSV row into a Detection.
// The heterogeneous confidence column (categorical for VIIRS, numeric for
// MODIS) is resolved here into a single canonical 0-1 value so downstream
// scoring never type-sniffs.
func ParseRawRecord(rec RawRecord) (Detection, error) {
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(rec.Latitude), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(rec.Longitude), 64)
	if errLat != nil || errLon != nil {
		return Detection{}, fmt.Errorf("%w: bad coordinates %q,%q", ErrMalformedDetection, rec.Latitude, rec.Longitude)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Detection{}, fmt.Errorf("%w: coordinates out of range %.4f,%.4f", ErrMalformedDetection, lat, lon)
	}

	acqDate, err := time.Parse("2006-01-02", strings.TrimSpace(rec.AcqDate))
	if err != nil {
		return Detection{}, fmt.Errorf("%w: bad acq_date %q", ErrMalformedDetection, rec.AcqDate)
	}

	confidence, confidenceRaw := parseConfidence(rec.Confidence)

	return Detection{
		ID:            GenerateID(acqDate, lat, lon),
		Latitude:      lat,
		Longitude:     lon,
		Brightness:    parseBrightness(rec.BrightTI4, rec.Brightness),
		Confidence:    confidence,
		ConfidenceRaw: confidenceRaw,
		FRP:           parseFloatOrZero(rec.FRP),
		AcqDate:       acqDate,
		AcqDateTime:   combineHHMM(acqDate, rec.AcqTime),
		DayNight:      strings.ToUpper(strings.TrimSpace(rec.DayNight)),
		Satellite:     strings.TrimSpace(rec.Satellite),
		ProcessedAt:   clock.Now().UTC(),
	}, nil
}

// GenerateID produces the stable detection identifier from the acquisition
// date and coordinates rounded to 4 decimals (~11m). Repeated fetches of the
// same detection produce the same ID, so persistence upserts instead of
// duplicating.
func GenerateID(acqDate time.Time, lat, lon float64) string {
	return fmt.Sprintf("%s_%.4f_%.4f", acqDate.Format("2006-01-02"), round4(lat), round4(lon))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// parseConfidence resolves the tagged confidence variant to a canonical
// 0-1 value. Unparseable values fall back to nominal.
func parseConfidence(raw string) (float64, string) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return confidenceCategories["n"], ""
	}
	if v, ok := confidenceCategories[raw]; ok {
		return v, raw
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return confidenceCategories["n"], raw
	}
	return clip(n/100, 0, 1), raw
}

// parseBrightness prefers the VIIRS bright_ti4 column, falling back to the
// MODIS brightness column.
func parseBrightness(brightTI4, brightness string) float64 {
	if v := parseFloatOrZero(brightTI4); v != 0 {
		return v
	}
	return parseFloatOrZero(brightness)
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// combineHHMM combines the acquisition date with a FIRMS HHMM time value
// (e.g. "131" -> 01:31). Returns the bare date when the value is unusable.
func combineHHMM(acqDate time.Time, hhmm string) time.Time {
	hhmm = strings.TrimSpace(hhmm)
	for len(hhmm) < 4 {
		hhmm = "0" + hhmm
	}

	hour, errH := strconv.Atoi(hhmm[:2])
	mins, errM := strconv.Atoi(hhmm[2:])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || mins < 0 || mins > 59 {
		return acqDate
	}

	return time.Date(
		acqDate.Year(), acqDate.Month(), acqDate.Day(),
		hour, mins, 0, 0, time.UTC,
	)
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
