// Package governance implements the audit log sink.
package governance

import (
	"context"

	"tablekeep/internal/domain"
	"tablekeep/internal/service/auditutil"
)

// AuditService appends and lists audit entries. Entries are never modified.
type AuditService struct {
	repo domain.AuditRepository
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record appends an entry for a high-value mutation.
func (s *AuditService) Record(ctx context.Context, ev auditutil.Event) error {
	return auditutil.Record(ctx, s.repo, ev)
}

// List returns a filtered, paginated list of audit log entries. Requires admin privileges.
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filter)
}
