package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, device *Device) error
	Update(ctx context.Context, db *gorm.DB, device *Device) error
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Device, error)
	FindByDeviceID(ctx context.Context, db *gorm.DB, orgID snowflake.ID, deviceID string) (*Device, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]Device, error)
	TouchLastSeen(ctx context.Context, db *gorm.DB, orgID snowflake.ID, deviceID string, at time.Time) error
}
