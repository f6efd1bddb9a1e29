// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these; services read them. Keeping the package free of
// net/http lets services and stores import it without pulling transport code.
//
// Usage in services (read values):
//
//	guardID := requestcontext.GuardID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithActor(ctx, actor)
package requestcontext

import (
	"context"
	"time"

	id "garita/pkg/domain"
)

// Actor is the authenticated caller: the guard or admin registering accesses,
// plus the facility and company scope their token carries. The core always
// receives this explicitly; there is no ambient current-user state.
type Actor struct {
	GuardID    id.GuardID
	Role       id.Role
	CompanyID  id.CompanyID
	FacilityID id.FacilityID
	Username   string
}

// HasFacility reports whether the actor is scoped to a facility. Guards must
// be; admins may operate without one for registry management.
func (a Actor) HasFacility() bool { return !a.FacilityID.IsNil() }

type (
	actorKey       struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	deviceKey      struct{}
)

// Exported context keys for tests that need bare context.WithValue.
var (
	ContextKeyActor       = actorKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyDevice      = deviceKey{}
)

// ActorFrom retrieves the authenticated actor. The bool is false when no auth
// middleware ran (background jobs, tests that skip it).
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ContextKeyActor).(Actor)
	return a, ok
}

// WithActor injects the authenticated actor into the context.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ContextKeyActor, a)
}

// GuardID retrieves the acting guard's id, zero when unauthenticated.
func GuardID(ctx context.Context) id.GuardID {
	a, _ := ActorFrom(ctx)
	return a.GuardID
}

// RequestID retrieves the request correlation id from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request id into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Device retrieves the caller's device description (parsed User-Agent), used
// only for audit enrichment.
func Device(ctx context.Context) string {
	if d, ok := ctx.Value(ContextKeyDevice).(string); ok {
		return d
	}
	return ""
}

// WithDevice injects a device description into the context.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, ContextKeyDevice, device)
}

// Now retrieves the request-scoped time, falling back to time.Now for
// non-HTTP contexts (workers, CLI, tests that don't pin time).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request time, so one request observes one instant and
// tests control the clock.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
