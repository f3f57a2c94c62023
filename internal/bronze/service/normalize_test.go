package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPayloadString(t *testing.T) {
	payload := map[string]any{
		"transaction_id": "  t1  ",
		"id":             float64(42),
		"empty":          "",
		"count":          float64(12.5),
	}

	assert.Equal(t, "t1", payloadString(payload, "transaction_id"))
	assert.Equal(t, "42", payloadString(payload, "id"))
	assert.Equal(t, "12.5", payloadString(payload, "count"))
	assert.Equal(t, "42", payloadString(payload, "empty", "id"))
	assert.Equal(t, "", payloadString(payload, "missing"))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2024-01-01T00:00:00Z", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-01 15:04:05", time.Date(2024, 1, 1, 15, 4, 5, 0, time.UTC), true},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"not-a-time", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := parseTimestamp(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.raw)
		}
	}
}

func TestSourceFileName(t *testing.T) {
	assert.Equal(t, "tx.json", sourceFileName("edge/scoutpi-0002/tx.json"))
	assert.Equal(t, "deviceA::file.json", sourceFileName("deviceA::file.json"))
	assert.Equal(t, "", sourceFileName(""))
}

func TestQualityScore(t *testing.T) {
	full := map[string]any{
		"peso_value": "12.50",
		"store_id":   "s1",
		"brand_name": "Coca-Cola",
		"timestamp":  "2024-01-01T00:00:00Z",
	}
	assert.Equal(t, 100, qualityScore(full, "SCOUTPI-0002"))

	assert.Equal(t, 0, qualityScore(map[string]any{}, "unknown"))
	assert.Equal(t, 20, qualityScore(map[string]any{
		"peso_value": "abc",
		"store_id":   "s1",
	}, "unknown"))
}
