package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Brand is a master-data brand owned by an organization.
type Brand struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID          snowflake.ID `json:"organization_id" gorm:"column:org_id;not null;uniqueIndex:ux_brands_org_normalized,priority:1"`
	Name           string       `json:"name" gorm:"type:text;not null"`
	NormalizedName string       `json:"normalized_name" gorm:"column:normalized_name;type:text;not null;uniqueIndex:ux_brands_org_normalized,priority:2"`
	Slug           string       `json:"slug" gorm:"type:text;not null"`
	Active         bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Brand) TableName() string { return "brands" }

// BrandAlias maps an alternate spelling onto a brand.
type BrandAlias struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID           snowflake.ID `json:"organization_id" gorm:"column:org_id;not null"`
	BrandID         snowflake.ID `json:"brand_id" gorm:"column:brand_id;not null;index"`
	Alias           string       `json:"alias" gorm:"type:text;not null"`
	NormalizedAlias string       `json:"normalized_alias" gorm:"column:normalized_alias;type:text;not null"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BrandAlias) TableName() string { return "brand_aliases" }

// Match is the outcome of resolving a raw brand string.
type Match struct {
	Brand      *Brand  `json:"brand"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

const (
	MatchMethodExact      = "exact"
	MatchMethodAlias      = "alias"
	MatchMethodNormalized = "normalized"
	MatchMethodToken      = "token"
)
