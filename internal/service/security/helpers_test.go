package security

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	internaldb "tablekeep/internal/db"
	"tablekeep/internal/db/repository"
	"tablekeep/internal/domain"
	"tablekeep/internal/testutil"
)

// staticSource serves a fixed matrix.
type staticSource struct {
	m   domain.PolicyMatrix
	err error
}

func (s staticSource) Load(context.Context) (domain.PolicyMatrix, error) { return s.m, s.err }

type storeFixture struct {
	db     *sql.DB
	actors *repository.ActorRepo
	policy *repository.PolicyRepo
	audit  *repository.AuditRepo
	tx     *repository.TxManager
	cache  *PolicyCache
	store  *PolicyStore
	admin  *domain.Actor
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	f := &storeFixture{
		db:     writeDB,
		actors: repository.NewActorRepo(writeDB),
		policy: repository.NewPolicyRepo(writeDB),
		audit:  repository.NewAuditRepo(writeDB),
		tx:     repository.NewTxManager(writeDB),
		cache:  NewPolicyCache(),
	}
	f.store = NewPolicyStore(f.policy, f.audit, f.tx, f.cache, nil, nil, nil)
	f.admin = f.createActor(t, "admin@example.com", domain.RoleAdmin)
	return f
}

func (f *storeFixture) createActor(t *testing.T, email string, role domain.Role) *domain.Actor {
	t.Helper()
	a, err := f.actors.Create(context.Background(), &domain.Actor{
		Email: email, Name: email, Role: role,
		MembershipStatus: domain.MembershipActive, GuestAllowance: domain.DefaultGuestAllowance,
	})
	require.NoError(t, err)
	return a
}

func (f *storeFixture) adminCtx() context.Context {
	return domain.WithOriginAddress(testutil.AdminCtx(f.admin.ID), "10.1.2.3")
}
