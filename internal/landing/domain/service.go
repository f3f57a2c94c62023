package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Append stores a payload in the landing buffer as-is. No validation is
	// performed on the payload; an empty payload is stored as null.
	Append(ctx context.Context, req AppendRequest) (*AppendResponse, error)

	// PendingCount reports how many rows are waiting to be loaded.
	PendingCount(ctx context.Context) (int64, error)
}

type AppendRequest struct {
	Payload    map[string]any `json:"payload"`
	SourcePath string         `json:"source_path"`
}

type AppendResponse struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidSourcePath   = errors.New("invalid_source_path")
)
