package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/lib/pq"
	"gorm.io/gorm"

	branddomain "github.com/insightpulse/scout/internal/brand/domain"
	brandservice "github.com/insightpulse/scout/internal/brand/service"
	devicedomain "github.com/insightpulse/scout/internal/device/domain"
	productdomain "github.com/insightpulse/scout/internal/product/domain"
	"github.com/insightpulse/scout/pkg/repository"
)

const (
	defaultOrgName = "Main"
	defaultOrgSlug = "main"
)

type organization struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (organization) TableName() string { return "organizations" }

// EnsureMainOrg seeds the default organization so a fresh install can
// ingest immediately.
func EnsureMainOrg(db *gorm.DB) error {
	return EnsureMainOrgWithID(db, 0)
}

// EnsureMainOrgWithID seeds the default organization using a fixed id,
// matching DEFAULT_ORG when configured.
func EnsureMainOrgWithID(db *gorm.DB, orgID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureMainOrgTx(ctx, tx, node, orgID)
		if err != nil {
			return err
		}
		if err := ensureStarterCategories(ctx, tx, node, org.ID); err != nil {
			return err
		}
		return ensureStarterDevices(ctx, tx, node, org.ID)
	})
}

func ensureMainOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID int64) (*organization, error) {
	orgs := repository.ProvideStore[organization](tx)
	org, err := orgs.FindOne(ctx, &organization{Slug: defaultOrgSlug})
	if err != nil {
		return nil, err
	}
	if org != nil {
		return org, nil
	}

	id := node.Generate()
	if orgID != 0 {
		id = snowflake.ID(orgID)
	}
	now := time.Now().UTC()
	org = &organization{
		ID:        id,
		Name:      defaultOrgName,
		Slug:      defaultOrgSlug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := orgs.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// ensureStarterCategories seeds the sari-sari staples so new transactions
// classify out of the box.
func ensureStarterCategories(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	store := repository.ProvideStore[productdomain.ProductCategory](tx)
	count, err := store.Count(ctx, &productdomain.ProductCategory{OrgID: orgID})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	categories := []*productdomain.ProductCategory{
		{Name: "Beverages", Keywords: pq.StringArray{"cola", "juice", "coffee", "tea", "water", "soda"}},
		{Name: "Snacks", Keywords: pq.StringArray{"chips", "crackers", "biscuit", "candy", "chocolate"}},
		{Name: "Personal Care", Keywords: pq.StringArray{"shampoo", "soap", "toothpaste", "lotion", "deodorant"}},
		{Name: "Household", Keywords: pq.StringArray{"detergent", "bleach", "dishwashing", "fabric"}},
		{Name: "Tobacco", Keywords: pq.StringArray{"cigarette", "tobacco"}},
		{Name: "Canned Goods", Keywords: pq.StringArray{"sardines", "corned beef", "tuna", "meat loaf"}},
	}
	for _, category := range categories {
		category.ID = node.Generate()
		category.OrgID = orgID
		category.CreatedAt = now
		category.UpdatedAt = now
	}
	return store.BatchCreate(ctx, categories)
}

func ensureStarterDevices(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	store := repository.ProvideStore[devicedomain.Device](tx)
	count, err := store.Count(ctx, &devicedomain.Device{OrgID: orgID})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	devices := []*devicedomain.Device{
		{DeviceID: "SCOUTPI-0001", Name: "SCOUTPI-0001"},
		{DeviceID: "SCOUTPI-0002", Name: "SCOUTPI-0002"},
	}
	for _, device := range devices {
		device.ID = node.Generate()
		device.OrgID = orgID
		device.Active = true
		device.CreatedAt = now
		device.UpdatedAt = now
	}
	return store.BatchCreate(ctx, devices)
}

// EnsureBrand upserts one brand by normalized name. Exposed for install
// scripts that pre-load a brand catalog.
func EnsureBrand(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID, name string) (*branddomain.Brand, error) {
	normalized := brandservice.Normalize(name)
	store := repository.ProvideStore[branddomain.Brand](tx)
	brand, err := store.FindOne(ctx, &branddomain.Brand{OrgID: orgID, NormalizedName: normalized})
	if err != nil {
		return nil, err
	}
	if brand != nil {
		return brand, nil
	}

	now := time.Now().UTC()
	brand = &branddomain.Brand{
		ID:             node.Generate(),
		OrgID:          orgID,
		Name:           name,
		NormalizedName: normalized,
		Slug:           slug.Make(name),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := store.Create(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}
