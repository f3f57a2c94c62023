package domain

import (
	"context"
	"errors"
	"time"
)

// DefaultRegion is the placeholder stored when a payload carries no region.
const DefaultRegion = "Unknown"

type Service interface {
	// PromoteNew projects every bronze record not yet represented in the
	// silver store into a typed transaction. Candidates are deduplicated
	// by transaction id within the pass; insert conflicts are skipped.
	// Returns the count of rows newly inserted. Safe to call with nothing
	// pending.
	PromoteNew(ctx context.Context) (int, error)

	List(ctx context.Context, limit int) ([]Response, error)
}

type Response struct {
	ID              string    `json:"id"`
	TransactionID   string    `json:"transaction_id"`
	StoreID         *string   `json:"store_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	BrandName       *string   `json:"brand_name,omitempty"`
	BrandID         *string   `json:"brand_id,omitempty"`
	BrandConfidence *float64  `json:"brand_confidence,omitempty"`
	PesoValue       *float64  `json:"peso_value,omitempty"`
	Region          string    `json:"region"`
	DeviceID        string    `json:"device_id"`
	Location        *string   `json:"location,omitempty"`
	ProductCategory *string   `json:"product_category,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

var ErrInvalidOrganization = errors.New("invalid_organization")
