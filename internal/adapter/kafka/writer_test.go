package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	det := domain.Detection{
		ID:           "2025-08-14_38.1234_-120.5678",
		Latitude:     38.1234,
		Longitude:    -120.5678,
		Brightness:   345.2,
		Confidence:   1.0,
		FRP:          12.5,
		AcqDate:      time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC),
		RiskScore:    71.3,
		RiskCategory: "High",
		ProcessedAt:  time.Date(2025, 8, 15, 6, 0, 0, 0, time.UTC),
	}

	msg, err := serializeToMessage(det)
	require.NoError(t, err)

	assert.Equal(t, []byte(det.ID), msg.Key, "key must be the fire ID for idempotent downstream upserts")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "High", headers["risk_category"])
	assert.Equal(t, "2025-08-15T06:00:00Z", headers["processed_at"])

	var roundtrip domain.Detection
	require.NoError(t, json.Unmarshal(msg.Value, &roundtrip))
	assert.Equal(t, det.ID, roundtrip.ID)
	assert.Equal(t, det.RiskScore, roundtrip.RiskScore)
	assert.Equal(t, det.RiskCategory, roundtrip.RiskCategory)
	assert.Nil(t, roundtrip.Weather)
}
