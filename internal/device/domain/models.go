package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Device is a registered edge device. DeviceID is the stable hardware
// identifier reported in payloads and file paths, e.g. "SCOUTPI-0002".
type Device struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	OrgID      snowflake.ID `gorm:"index:ux_devices_org_device_id,unique"`
	DeviceID   string       `gorm:"index:ux_devices_org_device_id,unique"`
	Name       string
	StoreID    *string
	Location   *string
	Active     bool
	LastSeenAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Device) TableName() string {
	return "devices"
}
