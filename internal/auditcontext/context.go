// Package auditcontext carries actor and request provenance for audit trails.
package auditcontext

import (
	"context"
	"strings"
)

type actorKey struct{}
type requestIDKey struct{}
type ipAddressKey struct{}
type userAgentKey struct{}

type actorValue struct {
	Type string
	ID   string
}

// WithActor records the acting principal (system, api_key) on the context.
func WithActor(ctx context.Context, actorType, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorValue{
		Type: strings.TrimSpace(actorType),
		ID:   strings.TrimSpace(actorID),
	})
}

// Actor returns the acting principal, if set.
func Actor(ctx context.Context) (actorType, actorID string, ok bool) {
	if ctx == nil {
		return "", "", false
	}
	value, found := ctx.Value(actorKey{}).(actorValue)
	if !found {
		return "", "", false
	}
	return value.Type, value.ID, true
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if strings.TrimSpace(requestID) == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}

func WithIPAddress(ctx context.Context, ip string) context.Context {
	if strings.TrimSpace(ip) == "" {
		return ctx
	}
	return context.WithValue(ctx, ipAddressKey{}, ip)
}

func IPAddress(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(ipAddressKey{}).(string)
	return value
}

func WithUserAgent(ctx context.Context, ua string) context.Context {
	if strings.TrimSpace(ua) == "" {
		return ctx
	}
	return context.WithValue(ctx, userAgentKey{}, ua)
}

func UserAgent(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(userAgentKey{}).(string)
	return value
}
