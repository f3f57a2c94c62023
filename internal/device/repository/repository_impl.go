package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	devicedomain "github.com/insightpulse/scout/internal/device/domain"
)

type repo struct{}

func Provide() devicedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, d *devicedomain.Device) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO devices (id, org_id, device_id, name, store_id, location, active, last_seen_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID,
		d.OrgID,
		d.DeviceID,
		d.Name,
		d.StoreID,
		d.Location,
		d.Active,
		d.LastSeenAt,
		d.CreatedAt,
		d.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, d *devicedomain.Device) error {
	return db.WithContext(ctx).Exec(
		`UPDATE devices
		 SET name = ?, store_id = ?, location = ?, active = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		d.Name,
		d.StoreID,
		d.Location,
		d.Active,
		d.UpdatedAt,
		d.OrgID,
		d.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM devices WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*devicedomain.Device, error) {
	var device devicedomain.Device
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, device_id, name, store_id, location, active, last_seen_at, created_at, updated_at
		 FROM devices WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&device).Error
	if err != nil {
		return nil, err
	}
	if device.ID == 0 {
		return nil, nil
	}
	return &device, nil
}

func (r *repo) FindByDeviceID(ctx context.Context, db *gorm.DB, orgID snowflake.ID, deviceID string) (*devicedomain.Device, error) {
	var device devicedomain.Device
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, device_id, name, store_id, location, active, last_seen_at, created_at, updated_at
		 FROM devices WHERE org_id = ? AND device_id = ?`,
		orgID,
		deviceID,
	).Scan(&device).Error
	if err != nil {
		return nil, err
	}
	if device.ID == 0 {
		return nil, nil
	}
	return &device, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]devicedomain.Device, error) {
	var devices []devicedomain.Device
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, device_id, name, store_id, location, active, last_seen_at, created_at, updated_at
		 FROM devices WHERE org_id = ? ORDER BY created_at ASC`,
		orgID,
	).Scan(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *repo) TouchLastSeen(ctx context.Context, db *gorm.DB, orgID snowflake.ID, deviceID string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE devices SET last_seen_at = ? WHERE org_id = ? AND device_id = ? AND (last_seen_at IS NULL OR last_seen_at < ?)`,
		at,
		orgID,
		deviceID,
		at,
	).Error
}
