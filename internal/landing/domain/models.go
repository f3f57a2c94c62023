package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// RawIngestRecord is one freshly received payload waiting in the landing
// buffer. Nothing about the payload shape is validated on the way in; the
// bronze loader owns all interpretation. Rows are deleted once drained.
type RawIngestRecord struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	OrgID      snowflake.ID `gorm:"index:ix_landing_org"`
	Payload    datatypes.JSONMap
	SourcePath string
	ReceivedAt time.Time
}

func (RawIngestRecord) TableName() string {
	return "landing_records"
}
