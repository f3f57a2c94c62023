package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error

	// MatchPath resolves a source file path to a registered device id by
	// case-insensitive substring match. Longer device ids win so that
	// "SCOUTPI-00021" never matches as "SCOUTPI-0002". Returns "" when no
	// registered device appears in the path.
	MatchPath(ctx context.Context, path string) (string, error)

	// MarkSeen stamps last_seen_at for a device that just produced data.
	// Unknown device ids are ignored.
	MarkSeen(ctx context.Context, deviceID string, at time.Time) error
}

type CreateRequest struct {
	DeviceID string  `json:"device_id"`
	Name     string  `json:"name"`
	StoreID  *string `json:"store_id,omitempty"`
	Location *string `json:"location,omitempty"`
	Active   *bool   `json:"active"`
}

type UpdateRequest struct {
	ID       string  `json:"id"`
	Name     *string `json:"name,omitempty"`
	StoreID  *string `json:"store_id,omitempty"`
	Location *string `json:"location,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

type Response struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	DeviceID       string     `json:"device_id"`
	Name           string     `json:"name"`
	StoreID        *string    `json:"store_id,omitempty"`
	Location       *string    `json:"location,omitempty"`
	Active         bool       `json:"active"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidDeviceID     = errors.New("invalid_device_id")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidID           = errors.New("invalid_id")
	ErrDuplicateDeviceID   = errors.New("duplicate_device_id")
	ErrNotFound            = errors.New("not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
