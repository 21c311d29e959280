package governance

import (
	"context"

	"tablekeep/internal/domain"
)

// requireAdmin checks that the caller in context is an active admin.
func requireAdmin(ctx context.Context) error {
	a, ok := domain.ActorFromContext(ctx)
	if !ok {
		return domain.ErrAccessDenied("authentication required")
	}
	if !a.IsActive() {
		return domain.ErrAccessDenied("membership is %s", a.MembershipStatus)
	}
	if !a.IsAdmin() {
		return domain.ErrAccessDenied("admin privileges required")
	}
	return nil
}
