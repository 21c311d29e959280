package security

import (
	"context"

	"tablekeep/internal/domain"
)

// PolicyService exposes the policy matrix to operators.
type PolicyService struct {
	store *PolicyStore
	eval  *Evaluator
}

// NewPolicyService creates a new PolicyService.
func NewPolicyService(store *PolicyStore, eval *Evaluator) *PolicyService {
	return &PolicyService{store: store, eval: eval}
}

// Get returns a copy of the current matrix. Admins always may; other roles
// only when the matrix grants PolicyMatrix:read.
func (s *PolicyService) Get(ctx context.Context) (domain.PolicyMatrix, error) {
	if _, err := s.eval.Authorize(ctx, domain.ResourcePolicyMatrix, domain.ActionRead); err != nil {
		return nil, err
	}
	m, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return m.Clone(), nil
}

// Replace validates and persists m in full. Requires admin privileges.
func (s *PolicyService) Replace(ctx context.Context, m domain.PolicyMatrix) error {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, m, actor.ID, domain.OriginAddressFromContext(ctx))
}
