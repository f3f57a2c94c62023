package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/authz"
	"github.com/insightpulse/scout/internal/clock"
	"github.com/insightpulse/scout/internal/orgcontext"
	productdomain "github.com/insightpulse/scout/internal/product/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  productdomain.Repository
	Authz authz.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  productdomain.Repository
	authz authz.Service
}

func NewService(p Params) productdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		authz: p.Authz,
	}
}

func (s *Service) Create(ctx context.Context, req productdomain.CreateRequest) (*productdomain.Response, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectProduct, authz.ActionProductCreate); err != nil {
		return nil, err
	}

	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, productdomain.ErrInvalidSKU
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, productdomain.ErrInvalidName
	}

	existing, err := s.repo.FindBySKU(ctx, s.db, orgID, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, productdomain.ErrDuplicateSKU
	}

	brandID, err := parseOptionalID(req.BrandID)
	if err != nil {
		return nil, err
	}
	categoryID, err := parseOptionalID(req.CategoryID)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	product := &productdomain.Product{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		SKU:        sku,
		Name:       name,
		BrandID:    brandID,
		CategoryID: categoryID,
		Active:     active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, product); err != nil {
		return nil, err
	}

	resp := s.toResponse(product)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]productdomain.Response, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectProduct, authz.ActionProductView); err != nil {
		return nil, err
	}

	products, err := s.repo.List(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}

	resp := make([]productdomain.Response, 0, len(products))
	for i := range products {
		resp = append(resp, s.toResponse(&products[i]))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*productdomain.Response, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectProduct, authz.ActionProductView); err != nil {
		return nil, err
	}

	productID, err := productdomain.ParseID(strings.TrimSpace(id))
	if err != nil || productID == 0 {
		return nil, productdomain.ErrInvalidID
	}

	product, err := s.repo.FindByID(ctx, s.db, orgID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, productdomain.ErrNotFound
	}

	resp := s.toResponse(product)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req productdomain.UpdateRequest) (*productdomain.Response, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectProduct, authz.ActionProductUpdate); err != nil {
		return nil, err
	}

	productID, err := productdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil || productID == 0 {
		return nil, productdomain.ErrInvalidID
	}

	product, err := s.repo.FindByID(ctx, s.db, orgID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, productdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, productdomain.ErrInvalidName
		}
		product.Name = name
	}
	if req.BrandID != nil {
		brandID, err := parseOptionalID(req.BrandID)
		if err != nil {
			return nil, err
		}
		product.BrandID = brandID
	}
	if req.CategoryID != nil {
		categoryID, err := parseOptionalID(req.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = categoryID
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	product.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, product); err != nil {
		return nil, err
	}

	resp := s.toResponse(product)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectProduct, authz.ActionProductDelete); err != nil {
		return err
	}

	productID, err := productdomain.ParseID(strings.TrimSpace(id))
	if err != nil || productID == 0 {
		return productdomain.ErrInvalidID
	}

	product, err := s.repo.FindByID(ctx, s.db, orgID, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return productdomain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, orgID, productID)
}

func (s *Service) CreateCategory(ctx context.Context, req productdomain.CreateCategoryRequest) (*productdomain.CategoryResponse, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectProduct, authz.ActionProductCreate); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, productdomain.ErrInvalidName
	}

	keywords := make([]string, 0, len(req.Keywords))
	seen := map[string]struct{}{}
	for _, keyword := range req.Keywords {
		lowered := strings.ToLower(strings.TrimSpace(keyword))
		if lowered == "" {
			continue
		}
		if _, dup := seen[lowered]; dup {
			continue
		}
		seen[lowered] = struct{}{}
		keywords = append(keywords, lowered)
	}

	now := s.clock.Now().UTC()
	category := &productdomain.ProductCategory{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Name:      name,
		Keywords:  pq.StringArray(keywords),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.InsertCategory(ctx, s.db, category); err != nil {
		return nil, err
	}

	resp := s.toCategoryResponse(category)
	return &resp, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]productdomain.CategoryResponse, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectProduct, authz.ActionProductView); err != nil {
		return nil, err
	}

	categories, err := s.repo.ListCategories(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}

	resp := make([]productdomain.CategoryResponse, 0, len(categories))
	for i := range categories {
		resp = append(resp, s.toCategoryResponse(&categories[i]))
	}
	return resp, nil
}

func (s *Service) Classify(ctx context.Context, productName string) (string, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return "", err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectProduct, authz.ActionProductView); err != nil {
		return "", err
	}

	lowered := strings.ToLower(strings.TrimSpace(productName))
	if lowered == "" {
		return "", nil
	}

	categories, err := s.repo.ListCategories(ctx, s.db, orgID)
	if err != nil {
		return "", err
	}

	for i := range categories {
		for _, keyword := range categories[i].Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(lowered, keyword) {
				return categories[i].Name, nil
			}
		}
	}
	return "", nil
}

func (s *Service) orgIDFromContext(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, productdomain.ErrInvalidOrganization
	}
	return orgID, nil
}

func (s *Service) toResponse(product *productdomain.Product) productdomain.Response {
	resp := productdomain.Response{
		ID:             product.ID.String(),
		OrganizationID: product.OrgID.String(),
		SKU:            product.SKU,
		Name:           product.Name,
		Active:         product.Active,
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
	if product.BrandID != nil {
		value := product.BrandID.String()
		resp.BrandID = &value
	}
	if product.CategoryID != nil {
		value := product.CategoryID.String()
		resp.CategoryID = &value
	}
	return resp
}

func (s *Service) toCategoryResponse(category *productdomain.ProductCategory) productdomain.CategoryResponse {
	return productdomain.CategoryResponse{
		ID:             category.ID.String(),
		OrganizationID: category.OrgID.String(),
		Name:           category.Name,
		Keywords:       category.Keywords,
		CreatedAt:      category.CreatedAt,
		UpdatedAt:      category.UpdatedAt,
	}
}

func parseOptionalID(value *string) (*snowflake.ID, error) {
	if value == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, nil
	}
	id, err := productdomain.ParseID(trimmed)
	if err != nil || id == 0 {
		return nil, productdomain.ErrInvalidID
	}
	return &id, nil
}
