package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var strictNumericPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// payloadString extracts the first non-empty value among keys, tolerating
// the types encoding/json produces for untyped maps. Numbers are rendered
// without a trailing ".0" so numeric ids stay stable.
func payloadString(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		switch value := payload[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(value, 'f', -1, 64)
		case int64:
			return strconv.FormatInt(value, 10)
		}
	}
	return ""
}

// parseTimestamp attempts the known layouts. Unparseable input reports
// false so callers can fall through instead of failing the row.
func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

// sourceFileName is the last /-separated segment of the source path.
func sourceFileName(sourcePath string) string {
	if sourcePath == "" {
		return ""
	}
	segments := strings.Split(sourcePath, "/")
	return segments[len(segments)-1]
}

// syntheticRecordID builds a batch-local identity for payloads carrying
// neither a transaction id nor an id field.
func syntheticRecordID(epoch int64, counter int) string {
	return fmt.Sprintf("%d-%d", epoch, counter)
}

// qualityScore is an informational 0..100 presence/validity score over the
// payload fields the silver layer cares about.
func qualityScore(payload map[string]any, deviceID string) int {
	score := 0
	if strictNumericPattern.MatchString(payloadString(payload, "peso_value")) {
		score += 40
	}
	if payloadString(payload, "store_id") != "" {
		score += 20
	}
	if payloadString(payload, "brand_name") != "" {
		score += 20
	}
	if _, ok := parseTimestamp(payloadString(payload, "timestamp")); ok {
		score += 10
	}
	if deviceID != "" && deviceID != "unknown" {
		score += 10
	}
	return score
}
