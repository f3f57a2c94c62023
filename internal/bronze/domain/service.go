package domain

import (
	"context"
	"errors"
	"time"
)

// DeviceUnknown is the terminal device fallback when neither the payload nor
// the source path identifies a registered device.
const DeviceUnknown = "unknown"

type Service interface {
	// LoadPending converts every buffered raw record into a bronze record
	// and drains the landing buffer. Duplicate natural keys are skipped;
	// the returned count covers rows actually inserted. Safe to call with
	// an empty buffer.
	LoadPending(ctx context.Context) (int, error)

	List(ctx context.Context, limit int) ([]Response, error)
}

type Response struct {
	ID           string         `json:"id"`
	RecordID     string         `json:"record_id"`
	DeviceID     string         `json:"device_id"`
	CapturedAt   time.Time      `json:"captured_at"`
	SourceFile   string         `json:"source_file"`
	Payload      map[string]any `json:"payload"`
	QualityScore int            `json:"quality_score"`
	CreatedAt    time.Time      `json:"created_at"`
}

var ErrInvalidOrganization = errors.New("invalid_organization")
