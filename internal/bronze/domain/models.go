package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BronzeRecord is a normalized raw record. RecordID is the natural key
// derived from the payload (or synthesized), unique per org. Rows are never
// updated after insert.
type BronzeRecord struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	OrgID        snowflake.ID `gorm:"index:ux_bronze_org_record_id,unique"`
	RecordID     string       `gorm:"index:ux_bronze_org_record_id,unique"`
	DeviceID     string
	CapturedAt   time.Time
	SourceFile   string
	Payload      datatypes.JSONMap
	QualityScore int
	CreatedAt    time.Time
}

func (BronzeRecord) TableName() string {
	return "bronze_records"
}
