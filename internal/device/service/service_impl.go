package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/insightpulse/scout/internal/authz"
	"github.com/insightpulse/scout/internal/clock"
	devicedomain "github.com/insightpulse/scout/internal/device/domain"
	"github.com/insightpulse/scout/internal/orgcontext"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  devicedomain.Repository
	Authz authz.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  devicedomain.Repository
	authz authz.Service
}

func NewService(p Params) devicedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("device.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		authz: p.Authz,
	}
}

func (s *Service) Create(ctx context.Context, req devicedomain.CreateRequest) (*devicedomain.Response, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectDevice, authz.ActionDeviceCreate); err != nil {
		return nil, err
	}

	deviceID := strings.ToUpper(strings.TrimSpace(req.DeviceID))
	if deviceID == "" {
		return nil, devicedomain.ErrInvalidDeviceID
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = deviceID
	}

	existing, err := s.repo.FindByDeviceID(ctx, s.db, orgID, deviceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, devicedomain.ErrDuplicateDeviceID
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now().UTC()
	device := &devicedomain.Device{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		DeviceID:  deviceID,
		Name:      name,
		StoreID:   req.StoreID,
		Location:  req.Location,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, device); err != nil {
		return nil, err
	}

	resp := s.toResponse(device)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]devicedomain.Response, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectDevice, authz.ActionDeviceView); err != nil {
		return nil, err
	}

	devices, err := s.repo.List(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}

	resp := make([]devicedomain.Response, 0, len(devices))
	for i := range devices {
		resp = append(resp, s.toResponse(&devices[i]))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*devicedomain.Response, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectDevice, authz.ActionDeviceView); err != nil {
		return nil, err
	}

	deviceID, err := devicedomain.ParseID(strings.TrimSpace(id))
	if err != nil || deviceID == 0 {
		return nil, devicedomain.ErrInvalidID
	}

	device, err := s.repo.FindByID(ctx, s.db, orgID, deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, devicedomain.ErrNotFound
	}

	resp := s.toResponse(device)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req devicedomain.UpdateRequest) (*devicedomain.Response, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectDevice, authz.ActionDeviceUpdate); err != nil {
		return nil, err
	}

	id, err := devicedomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return nil, devicedomain.ErrInvalidID
	}

	device, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, devicedomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, devicedomain.ErrInvalidName
		}
		device.Name = name
	}
	if req.StoreID != nil {
		device.StoreID = req.StoreID
	}
	if req.Location != nil {
		device.Location = req.Location
	}
	if req.Active != nil {
		device.Active = *req.Active
	}
	device.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, device); err != nil {
		return nil, err
	}

	resp := s.toResponse(device)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectDevice, authz.ActionDeviceDelete); err != nil {
		return err
	}

	deviceID, err := devicedomain.ParseID(strings.TrimSpace(id))
	if err != nil || deviceID == 0 {
		return devicedomain.ErrInvalidID
	}

	device, err := s.repo.FindByID(ctx, s.db, orgID, deviceID)
	if err != nil {
		return err
	}
	if device == nil {
		return devicedomain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, orgID, deviceID)
}

func (s *Service) MatchPath(ctx context.Context, path string) (string, error) {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return "", err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectDevice, authz.ActionDeviceView); err != nil {
		return "", err
	}

	if strings.TrimSpace(path) == "" {
		return "", nil
	}

	devices, err := s.repo.List(ctx, s.db, orgID)
	if err != nil {
		return "", err
	}

	return MatchPath(path, devices), nil
}

// MatchPath scans the registered devices for one whose device id appears as
// a case-insensitive substring of the path. Candidates are tried
// longest-first so a device id that is a prefix of another never shadows it.
func MatchPath(path string, devices []devicedomain.Device) string {
	loweredPath := strings.ToLower(path)
	candidates := make([]string, 0, len(devices))
	for i := range devices {
		if !devices[i].Active {
			continue
		}
		candidates = append(candidates, devices[i].DeviceID)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) > len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})

	for _, deviceID := range candidates {
		if deviceID == "" {
			continue
		}
		if strings.Contains(loweredPath, strings.ToLower(deviceID)) {
			return deviceID
		}
	}
	return ""
}

func (s *Service) MarkSeen(ctx context.Context, deviceID string, at time.Time) error {
	orgID, err := s.orgIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.authz.Authorize(ctx, authz.ActorFromContext(ctx), orgID.String(), authz.ObjectDevice, authz.ActionDeviceUpdate); err != nil {
		return err
	}

	deviceID = strings.ToUpper(strings.TrimSpace(deviceID))
	if deviceID == "" {
		return nil
	}
	return s.repo.TouchLastSeen(ctx, s.db, orgID, deviceID, at.UTC())
}

func (s *Service) orgIDFromContext(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, devicedomain.ErrInvalidOrganization
	}
	return orgID, nil
}

func (s *Service) toResponse(device *devicedomain.Device) devicedomain.Response {
	return devicedomain.Response{
		ID:             device.ID.String(),
		OrganizationID: device.OrgID.String(),
		DeviceID:       device.DeviceID,
		Name:           device.Name,
		StoreID:        device.StoreID,
		Location:       device.Location,
		Active:         device.Active,
		LastSeenAt:     device.LastSeenAt,
		CreatedAt:      device.CreatedAt,
		UpdatedAt:      device.UpdatedAt,
	}
}
