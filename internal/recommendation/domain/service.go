package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Generate derives advisories for the org from the gold aggregates and
	// the device registry. Re-running within the same window inserts
	// nothing new; the returned count covers recommendations actually
	// written.
	Generate(ctx context.Context) (int, error)

	List(ctx context.Context, limit int) ([]Response, error)
}

type Response struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Subject   string         `json:"subject"`
	Window    string         `json:"window"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

var ErrInvalidOrganization = errors.New("invalid_organization")
