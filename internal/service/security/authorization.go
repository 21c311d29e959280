package security

import (
	"context"
	"log/slog"

	"tablekeep/internal/domain"
	"tablekeep/internal/metrics"
)

// MatrixSource supplies the current policy matrix.
type MatrixSource interface {
	Load(ctx context.Context) (domain.PolicyMatrix, error)
}

// Evaluator answers "may this actor perform this action on this resource
// type, and with what scope".
type Evaluator struct {
	source  MatrixSource
	owners  OwnershipRegistry
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewEvaluator creates an Evaluator backed by source, using the default
// ownership registry.
func NewEvaluator(source MatrixSource, logger *slog.Logger, m *metrics.Metrics) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		source:  source,
		owners:  DefaultOwnership(),
		logger:  logger.With("component", "authorization"),
		metrics: m,
	}
}

// Evaluate returns the scope granted to role for action on res. Admin is
// always granted ScopeAll without consulting the matrix. Unknown roles,
// resources or actions yield ScopeNone.
func (e *Evaluator) Evaluate(ctx context.Context, role domain.Role, res domain.ResourceType, action domain.Action) (domain.Scope, error) {
	if role == domain.RoleAdmin {
		return domain.ScopeAll, nil
	}
	m, err := e.source.Load(ctx)
	if err != nil {
		return domain.ScopeNone, err
	}
	return m.Scope(role, res, action), nil
}

// Authorize gates an operation for the actor carried in ctx. It rejects a
// missing or non-active actor before evaluating, and rejects ScopeNone. The
// returned Access applies the granted scope to concrete rows.
func (e *Evaluator) Authorize(ctx context.Context, res domain.ResourceType, action domain.Action) (Access, error) {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		return Access{}, domain.ErrAccessDenied("authentication required")
	}
	if !actor.IsActive() {
		e.metrics.AuthDecision(string(res), string(action), "inactive")
		return Access{}, domain.ErrAccessDenied("membership is %s", actor.MembershipStatus)
	}

	scope, err := e.Evaluate(ctx, actor.Role, res, action)
	if err != nil {
		return Access{}, domain.ErrInternal(err, "evaluate %s:%s", res, action)
	}
	e.metrics.AuthDecision(string(res), string(action), string(scope))

	if scope == domain.ScopeNone {
		return Access{}, domain.ErrAccessDenied("%s may not %s %s", actor.Role, action, res)
	}

	if _, declared := e.owners[res]; scope == domain.ScopeOwn && !declared {
		e.logger.Error("own scope granted on resource without ownership attribute",
			"role", actor.Role, "resource", res, "action", action)
		return Access{}, domain.ErrAccessDenied("%s:%s cannot be scoped to an owner", res, action)
	}

	return newAccess(e.owners, actor.ID, res, action, scope), nil
}
