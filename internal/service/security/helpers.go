package security

import (
	"context"

	"tablekeep/internal/domain"
)

// requireAdmin checks that the caller in context is an active admin.
// Returns AccessDeniedError otherwise.
func requireAdmin(ctx context.Context) (domain.ContextActor, error) {
	a, ok := domain.ActorFromContext(ctx)
	if !ok {
		return a, domain.ErrAccessDenied("authentication required")
	}
	if !a.IsActive() {
		return a, domain.ErrAccessDenied("membership is %s", a.MembershipStatus)
	}
	if !a.IsAdmin() {
		return a, domain.ErrAccessDenied("admin privileges required")
	}
	return a, nil
}
