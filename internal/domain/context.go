package domain

import "context"

type actorKey struct{}

type originKey struct{}

// ContextActor carries the validated identity triple through request context.
// The upstream identity layer is trusted; nothing in the core re-verifies it.
type ContextActor struct {
	ID               int64
	Role             Role
	MembershipStatus MembershipStatus
}

// IsAdmin reports whether the actor holds the admin role.
func (a ContextActor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsActive reports whether the actor's membership permits authorization.
func (a ContextActor) IsActive() bool { return a.MembershipStatus == MembershipActive }

// WithActor stores a ContextActor in the context.
func WithActor(ctx context.Context, a ContextActor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext extracts the ContextActor from the context.
func ActorFromContext(ctx context.Context) (ContextActor, bool) {
	a, ok := ctx.Value(actorKey{}).(ContextActor)
	return a, ok
}

// WithOriginAddress stores the caller's network origin for audit entries.
func WithOriginAddress(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, originKey{}, addr)
}

// OriginAddressFromContext returns the stored origin address, or "".
func OriginAddressFromContext(ctx context.Context) string {
	addr, _ := ctx.Value(originKey{}).(string)
	return addr
}
