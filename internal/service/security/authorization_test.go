package security

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablekeep/internal/domain"
	"tablekeep/internal/testutil"
)

func TestEvaluate(t *testing.T) {
	m := domain.PolicyMatrix{}
	m.Set(domain.RoleStaff, domain.ResourceReservation, domain.ActionRead, domain.ScopeAll)
	m.Set(domain.RoleMember, domain.ResourceReservation, domain.ActionRead, domain.ScopeOwn)
	eval := NewEvaluator(staticSource{m: m}, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		role   domain.Role
		res    domain.ResourceType
		action domain.Action
		want   domain.Scope
	}{
		{"admin ignores matrix", domain.RoleAdmin, domain.ResourceAuditTrail, domain.ActionDelete, domain.ScopeAll},
		{"staff granted", domain.RoleStaff, domain.ResourceReservation, domain.ActionRead, domain.ScopeAll},
		{"member own", domain.RoleMember, domain.ResourceReservation, domain.ActionRead, domain.ScopeOwn},
		{"missing action", domain.RoleMember, domain.ResourceReservation, domain.ActionDelete, domain.ScopeNone},
		{"missing resource", domain.RoleStaff, domain.ResourceOrder, domain.ActionRead, domain.ScopeNone},
		{"unknown role", domain.Role("guest"), domain.ResourceReservation, domain.ActionRead, domain.ScopeNone},
		{"unknown resource", domain.RoleStaff, domain.ResourceType("Wine"), domain.ActionRead, domain.ScopeNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := eval.Evaluate(ctx, tc.role, tc.res, tc.action)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_SourceError(t *testing.T) {
	boom := errors.New("db down")
	eval := NewEvaluator(staticSource{err: boom}, nil, nil)

	_, err := eval.Evaluate(context.Background(), domain.RoleStaff, domain.ResourceReservation, domain.ActionRead)
	require.ErrorIs(t, err, boom)

	// Admin never touches the store.
	scope, err := eval.Evaluate(context.Background(), domain.RoleAdmin, domain.ResourceReservation, domain.ActionRead)
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeAll, scope)
}

func TestAuthorize(t *testing.T) {
	eval := NewEvaluator(staticSource{m: domain.DefaultPolicyMatrix()}, nil, nil)

	t.Run("no actor", func(t *testing.T) {
		_, err := eval.Authorize(context.Background(), domain.ResourceReservation, domain.ActionRead)
		var denied *domain.AccessDeniedError
		require.ErrorAs(t, err, &denied)
	})

	t.Run("suspended admin rejected before evaluation", func(t *testing.T) {
		ctx := domain.WithActor(context.Background(), domain.ContextActor{
			ID: 1, Role: domain.RoleAdmin, MembershipStatus: domain.MembershipSuspended,
		})
		_, err := eval.Authorize(ctx, domain.ResourceReservation, domain.ActionRead)
		var denied *domain.AccessDeniedError
		require.ErrorAs(t, err, &denied)
	})

	t.Run("none rejected", func(t *testing.T) {
		_, err := eval.Authorize(testutil.ActorCtx(5, domain.RoleMember), domain.ResourceAuditTrail, domain.ActionRead)
		var denied *domain.AccessDeniedError
		require.ErrorAs(t, err, &denied)
	})

	t.Run("own scope carries actor", func(t *testing.T) {
		access, err := eval.Authorize(testutil.ActorCtx(5, domain.RoleMember), domain.ResourceReservation, domain.ActionWrite)
		require.NoError(t, err)
		assert.Equal(t, domain.ScopeOwn, access.Scope)
		assert.Equal(t, int64(5), access.ActorID)
		require.NoError(t, access.Check(5))
	})

	t.Run("source failure is internal", func(t *testing.T) {
		broken := NewEvaluator(staticSource{err: errors.New("db down")}, nil, nil)
		_, err := broken.Authorize(testutil.ActorCtx(5, domain.RoleStaff), domain.ResourceReservation, domain.ActionRead)
		var internal *domain.InternalError
		require.ErrorAs(t, err, &internal)
	})
}

func TestAuthorize_OwnWithoutOwnershipAttributeFailsClosed(t *testing.T) {
	m := domain.PolicyMatrix{}
	m.Set(domain.RoleMember, domain.ResourceDiningRoom, domain.ActionRead, domain.ScopeOwn)
	eval := NewEvaluator(staticSource{m: m}, nil, nil)

	_, err := eval.Authorize(testutil.ActorCtx(5, domain.RoleMember), domain.ResourceDiningRoom, domain.ActionRead)
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)
}

func TestEvaluate_AfterEmptyMatrixSaved(t *testing.T) {
	f := newStoreFixture(t)
	eval := NewEvaluator(f.store, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.store.Save(f.adminCtx(), domain.PolicyMatrix{}, f.admin.ID, "10.1.2.3"))

	for _, role := range []domain.Role{domain.RoleMember, domain.RoleStaff} {
		for _, res := range domain.ResourceTypes() {
			for _, action := range domain.Actions() {
				scope, err := eval.Evaluate(ctx, role, res, action)
				require.NoError(t, err)
				assert.Equal(t, domain.ScopeNone, scope, "%s %s %s", role, res, action)
			}
		}
	}
	scope, err := eval.Evaluate(ctx, domain.RoleAdmin, domain.ResourceReservation, domain.ActionDelete)
	require.NoError(t, err)
	assert.Equal(t, domain.ScopeAll, scope)
}
