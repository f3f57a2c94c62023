package cache

import (
	"time"

	"github.com/bwmarrin/snowflake"

	branddomain "github.com/insightpulse/scout/internal/brand/domain"
)

const defaultCatalogTTL = 5 * time.Minute

// BrandCatalog is the full brand/alias set for one organization, loaded once
// per promotion pass instead of per transaction.
type BrandCatalog struct {
	Brands  []branddomain.Brand
	Aliases []branddomain.BrandAlias
}

// BrandResolverCache stores hot-path brand catalogs for silver promotion.
type BrandResolverCache interface {
	GetCatalog(orgID snowflake.ID) (BrandCatalog, bool)
	SetCatalog(orgID snowflake.ID, catalog BrandCatalog)
	Invalidate(orgID snowflake.ID)
}

type brandResolverCache struct {
	catalogs Cache[snowflake.ID, BrandCatalog]
	ttl      time.Duration
}

// NewBrandResolverCache returns an in-memory cache tuned for promotion passes.
func NewBrandResolverCache() BrandResolverCache {
	return &brandResolverCache{
		catalogs: NewTTLCache[snowflake.ID, BrandCatalog](),
		ttl:      defaultCatalogTTL,
	}
}

func (c *brandResolverCache) GetCatalog(orgID snowflake.ID) (BrandCatalog, bool) {
	return c.catalogs.Get(orgID)
}

func (c *brandResolverCache) SetCatalog(orgID snowflake.ID, catalog BrandCatalog) {
	if len(catalog.Brands) == 0 {
		return
	}
	c.catalogs.Set(orgID, catalog, c.ttl)
}

func (c *brandResolverCache) Invalidate(orgID snowflake.ID) {
	c.catalogs.Delete(orgID)
}
