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

	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error)
	ListCategories(ctx context.Context) ([]CategoryResponse, error)

	// Classify maps a raw product name onto a category by keyword hit.
	// An empty result means no category keyword appeared in the name.
	Classify(ctx context.Context, productName string) (string, error)
}

type CreateRequest struct {
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	BrandID    *string `json:"brand_id,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
	Active     *bool   `json:"active"`
}

type UpdateRequest struct {
	ID         string  `json:"id"`
	Name       *string `json:"name,omitempty"`
	BrandID    *string `json:"brand_id,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

type Response struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	BrandID        *string   `json:"brand_id,omitempty"`
	CategoryID     *string   `json:"category_id,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateCategoryRequest struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

type CategoryResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Keywords       []string  `json:"keywords"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidSKU          = errors.New("invalid_sku")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidID           = errors.New("invalid_id")
	ErrDuplicateSKU        = errors.New("duplicate_sku")
	ErrNotFound            = errors.New("not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
