package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Recommendation is one derived advisory for an org. The (org, kind,
// subject, window) natural key makes generation re-runs idempotent.
type Recommendation struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	OrgID     snowflake.ID `gorm:"index:ux_reco_org_kind_subject_window,unique"`
	Kind      string       `gorm:"index:ux_reco_org_kind_subject_window,unique"`
	Subject   string       `gorm:"index:ux_reco_org_kind_subject_window,unique"`
	Window    string       `gorm:"index:ux_reco_org_kind_subject_window,unique"`
	Title     string
	Message   string
	Payload   datatypes.JSONMap
	CreatedAt time.Time
}

func (Recommendation) TableName() string {
	return "recommendations"
}

const (
	KindBrandConcentration = "brand_concentration"
	KindStaleDevice        = "stale_device"
	KindLowQualityFeed     = "low_quality_feed"
)
