package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/authz"
	branddomain "github.com/insightpulse/scout/internal/brand/domain"
	"github.com/insightpulse/scout/internal/cache"
	"github.com/insightpulse/scout/internal/clock"
	"github.com/insightpulse/scout/internal/config"
	"github.com/insightpulse/scout/internal/orgcontext"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         branddomain.Repository
	Authz        authz.Service
	Cache        cache.BrandResolverCache
	ConfigHolder *config.PipelineConfigHolder
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         branddomain.Repository
	authz        authz.Service
	cache        cache.BrandResolverCache
	configHolder *config.PipelineConfigHolder
}

func NewService(p Params) branddomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("brand.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		authz:        p.Authz,
		cache:        p.Cache,
		configHolder: p.ConfigHolder,
	}
}

func (s *Service) Create(ctx context.Context, req branddomain.CreateRequest) (*branddomain.Response, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectBrand, authz.ActionBrandCreate); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, branddomain.ErrInvalidName
	}
	normalized := Normalize(name)
	if normalized == "" {
		return nil, branddomain.ErrInvalidName
	}

	existing, err := s.repo.FindByNormalizedName(ctx, s.db, orgID, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, branddomain.ErrDuplicateName
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	brand := &branddomain.Brand{
		ID:             s.genID.Generate(),
		OrgID:          orgID,
		Name:           name,
		NormalizedName: normalized,
		Slug:           slug.Make(name),
		Active:         active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	aliases := normalizeAliases(req.Aliases, normalized)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, brand); err != nil {
			return err
		}
		for _, alias := range aliases {
			record := &branddomain.BrandAlias{
				ID:              s.genID.Generate(),
				OrgID:           orgID,
				BrandID:         brand.ID,
				Alias:           alias.raw,
				NormalizedAlias: alias.normalized,
				CreatedAt:       now,
			}
			if err := s.repo.InsertAlias(ctx, tx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(orgID)
	resp := s.toResponse(brand, aliasValues(aliases))
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]branddomain.Response, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectBrand, authz.ActionBrandView); err != nil {
		return nil, err
	}

	brands, err := s.repo.List(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	aliases, err := s.repo.ListAliases(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}

	byBrand := map[snowflake.ID][]string{}
	for _, alias := range aliases {
		byBrand[alias.BrandID] = append(byBrand[alias.BrandID], alias.Alias)
	}

	resp := make([]branddomain.Response, 0, len(brands))
	for i := range brands {
		resp = append(resp, s.toResponse(&brands[i], byBrand[brands[i].ID]))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*branddomain.Response, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectBrand, authz.ActionBrandView); err != nil {
		return nil, err
	}

	brandID, err := branddomain.ParseID(strings.TrimSpace(id))
	if err != nil || brandID == 0 {
		return nil, branddomain.ErrInvalidID
	}

	brand, err := s.repo.FindByID(ctx, s.db, orgID, brandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, branddomain.ErrNotFound
	}

	aliases, err := s.repo.ListAliases(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0)
	for _, alias := range aliases {
		if alias.BrandID == brand.ID {
			values = append(values, alias.Alias)
		}
	}

	resp := s.toResponse(brand, values)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req branddomain.UpdateRequest) (*branddomain.Response, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectBrand, authz.ActionBrandUpdate); err != nil {
		return nil, err
	}

	brandID, err := branddomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil || brandID == 0 {
		return nil, branddomain.ErrInvalidID
	}

	brand, err := s.repo.FindByID(ctx, s.db, orgID, brandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, branddomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, branddomain.ErrInvalidName
		}
		normalized := Normalize(name)
		if normalized == "" {
			return nil, branddomain.ErrInvalidName
		}
		if normalized != brand.NormalizedName {
			existing, err := s.repo.FindByNormalizedName(ctx, s.db, orgID, normalized)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != brand.ID {
				return nil, branddomain.ErrDuplicateName
			}
		}
		brand.Name = name
		brand.NormalizedName = normalized
		brand.Slug = slug.Make(name)
	}
	if req.Active != nil {
		brand.Active = *req.Active
	}
	brand.UpdatedAt = s.clock.Now().UTC()

	var aliasRecords []normalizedAlias
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, brand); err != nil {
			return err
		}
		if req.Aliases == nil {
			return nil
		}
		if err := s.repo.DeleteAliases(ctx, tx, orgID, brand.ID); err != nil {
			return err
		}
		aliasRecords = normalizeAliases(*req.Aliases, brand.NormalizedName)
		for _, alias := range aliasRecords {
			record := &branddomain.BrandAlias{
				ID:              s.genID.Generate(),
				OrgID:           orgID,
				BrandID:         brand.ID,
				Alias:           alias.raw,
				NormalizedAlias: alias.normalized,
				CreatedAt:       brand.UpdatedAt,
			}
			if err := s.repo.InsertAlias(ctx, tx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(orgID)

	values := aliasValues(aliasRecords)
	if req.Aliases == nil {
		aliases, err := s.repo.ListAliases(ctx, s.db, orgID)
		if err != nil {
			return nil, err
		}
		for _, alias := range aliases {
			if alias.BrandID == brand.ID {
				values = append(values, alias.Alias)
			}
		}
	}

	resp := s.toResponse(brand, values)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectBrand, authz.ActionBrandDelete); err != nil {
		return err
	}

	brandID, err := branddomain.ParseID(strings.TrimSpace(id))
	if err != nil || brandID == 0 {
		return branddomain.ErrInvalidID
	}

	brand, err := s.repo.FindByID(ctx, s.db, orgID, brandID)
	if err != nil {
		return err
	}
	if brand == nil {
		return branddomain.ErrNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteAliases(ctx, tx, orgID, brandID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, orgID, brandID)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(orgID)
	return nil
}

func (s *Service) Resolve(ctx context.Context, raw string) (*branddomain.Match, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectBrand, authz.ActionBrandView); err != nil {
		return nil, err
	}

	catalog, ok := s.cache.GetCatalog(orgID)
	if !ok {
		brands, err := s.repo.List(ctx, s.db, orgID)
		if err != nil {
			return nil, err
		}
		aliases, err := s.repo.ListAliases(ctx, s.db, orgID)
		if err != nil {
			return nil, err
		}
		catalog = cache.BrandCatalog{Brands: brands, Aliases: aliases}
		s.cache.SetCatalog(orgID, catalog)
	}

	minimum := s.configHolder.Current().BrandMatchMinimum
	return MatchBrand(raw, catalog.Brands, catalog.Aliases, minimum), nil
}

func (s *Service) orgIDFromContext(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, branddomain.ErrInvalidOrganization
	}
	return orgID, nil
}

func (s *Service) toResponse(brand *branddomain.Brand, aliases []string) branddomain.Response {
	if aliases == nil {
		aliases = []string{}
	}
	return branddomain.Response{
		ID:             brand.ID.String(),
		OrganizationID: brand.OrgID.String(),
		Name:           brand.Name,
		NormalizedName: brand.NormalizedName,
		Slug:           brand.Slug,
		Aliases:        aliases,
		Active:         brand.Active,
		CreatedAt:      brand.CreatedAt,
		UpdatedAt:      brand.UpdatedAt,
	}
}

type normalizedAlias struct {
	raw        string
	normalized string
}

func normalizeAliases(raw []string, brandNormalized string) []normalizedAlias {
	seen := map[string]struct{}{brandNormalized: {}}
	out := make([]normalizedAlias, 0, len(raw))
	for _, alias := range raw {
		trimmed := strings.TrimSpace(alias)
		if trimmed == "" {
			continue
		}
		normalized := Normalize(trimmed)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalizedAlias{raw: trimmed, normalized: normalized})
	}
	return out
}

func aliasValues(aliases []normalizedAlias) []string {
	values := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		values = append(values, alias.raw)
	}
	return values
}
