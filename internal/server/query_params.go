package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	golddomain "github.com/insightpulse/scout/internal/gold/domain"
)

const dateOnlyLayout = "2006-01-02"

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

func parseLimit(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultListLimit, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed < 1 {
		return 0, errors.New("invalid_limit")
	}
	if parsed > maxListLimit {
		parsed = maxListLimit
	}
	return parsed, nil
}

func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		if endOfDay {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
		}
		return &parsed, nil
	}
	return nil, errors.New("invalid_time")
}

// parseGoldQuery reads the shared start/end window params. Missing bounds
// stay zero; the gold service applies its default window.
func parseGoldQuery(startRaw, endRaw string) (golddomain.Query, error) {
	var query golddomain.Query

	start, err := parseOptionalTime(startRaw, false)
	if err != nil {
		return query, newValidationError("start", "invalid_start", "invalid start")
	}
	end, err := parseOptionalTime(endRaw, true)
	if err != nil {
		return query, newValidationError("end", "invalid_end", "invalid end")
	}

	if start != nil {
		query.Start = *start
	}
	if end != nil {
		query.End = *end
	}
	return query, nil
}
