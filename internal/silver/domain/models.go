package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SilverTransaction is one cleaned, typed transaction projected from exactly
// one bronze record. TransactionID is unique per org; rows never mutate
// after insert. Region is always non-null (defaulted), PesoValue is nullable
// when the payload's monetary string failed strict validation.
type SilverTransaction struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	OrgID           snowflake.ID `gorm:"index:ux_silver_org_transaction_id,unique"`
	TransactionID   string       `gorm:"index:ux_silver_org_transaction_id,unique"`
	StoreID         *string
	Timestamp       time.Time
	BrandName       *string
	BrandID         *snowflake.ID
	BrandConfidence *float64
	PesoValue       *float64
	Region          string
	DeviceID        string
	Location        *string
	ProductCategory *string
	CreatedAt       time.Time
}

func (SilverTransaction) TableName() string {
	return "silver_transactions"
}
