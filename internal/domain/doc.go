// Package domain models NASA FIRMS active-fire detection data.
//
// # Data Source
//
// Detections originate from the NASA FIRMS area API
// (https://firms.modaps.eosdis.nasa.gov/api/area/), which serves
// near-real-time thermal anomaly observations as CSV. Two sensor families
// are supported, with slightly different column sets:
//
//	VIIRS (VIIRS_NOAA20_NRT, VIIRS_SNPP_NRT):
//	  - brightness column: "bright_ti4" (I-4 band brightness temperature, Kelvin)
//	  - confidence column: categorical "l" (low), "n" (nominal), "h" (high)
//	MODIS (MODIS_NRT):
//	  - brightness column: "brightness" (Kelvin)
//	  - confidence column: numeric 0-100
//
// The heterogeneous confidence representation is resolved once at ingestion
// into a canonical 0-1 value (l=0.33, n=0.66, h=1.0, numeric/100); nothing
// downstream inspects the raw form again.
//
// # Time format
//
// Acquisition time is "acq_date" (YYYY-MM-DD) plus "acq_time" (HHMM in
// 24-hour UTC, possibly unpadded: "131" means 01:31). The two are combined
// into a full UTC timestamp by [combineHHMM].
//
// # ID Generation
//
// Detection IDs are "<acq_date>_<lat>_<lon>" with coordinates rounded to
// 4 decimal places (roughly an 11 m grid). The ID is stable per
// (date, rounded-location) pair, so re-fetching the same detection window
// produces the same IDs and persistence upserts rather than duplicates.
// See [GenerateID].
//
// # Enrichment
//
// Weather (NOAA NWS) and air quality (EPA AirNow) attachments are optional
// and per-detection: a failed lookup leaves the field nil and is reported
// as a count, never as a batch error. Risk scoring substitutes neutral
// defaults for missing weather sub-fields.
package domain
