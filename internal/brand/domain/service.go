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

	// Resolve matches a raw brand string against the org's brands and
	// aliases. A nil match means nothing cleared the confidence floor.
	Resolve(ctx context.Context, raw string) (*Match, error)
}

type CreateRequest struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
	Active  *bool    `json:"active"`
}

type UpdateRequest struct {
	ID      string    `json:"id"`
	Name    *string   `json:"name,omitempty"`
	Aliases *[]string `json:"aliases,omitempty"`
	Active  *bool     `json:"active,omitempty"`
}

type Response struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"normalized_name"`
	Slug           string    `json:"slug"`
	Aliases        []string  `json:"aliases"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidID           = errors.New("invalid_id")
	ErrDuplicateName       = errors.New("duplicate_name")
	ErrNotFound            = errors.New("not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
