package authz

import (
	"context"
	"errors"
)

var (
	ErrInvalidActor        = errors.New("invalid_actor")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidObject       = errors.New("invalid_object")
	ErrInvalidAction       = errors.New("invalid_action")
	ErrForbidden           = errors.New("forbidden")
)

// Service answers capability checks for an actor inside an organization.
type Service interface {
	Authorize(ctx context.Context, actor string, orgID string, object string, action string) error
}
