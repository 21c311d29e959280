// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase.
package testutil

import (
	"context"
	"sync"

	"tablekeep/internal/domain"
)

// === Audit Repository Mock ===

// MockAuditRepo implements domain.AuditRepository for testing.
type MockAuditRepo struct {
	InsertFn func(ctx context.Context, e *domain.AuditEntry) error
	ListFn   func(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error)

	mu      sync.Mutex
	Entries []*domain.AuditEntry // collected entries for assertions
}

// Insert implements the interface method for testing.
func (m *MockAuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if m.InsertFn != nil {
		if err := m.InsertFn(ctx, e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.Entries = append(m.Entries, e)
	m.mu.Unlock()
	return nil
}

// List implements the interface method for testing.
func (m *MockAuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	panic("unexpected call to MockAuditRepo.List")
}

// LastEntry returns the last collected audit entry, or nil if none.
func (m *MockAuditRepo) LastEntry() *domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Entries) == 0 {
		return nil
	}
	return m.Entries[len(m.Entries)-1]
}

// HasAction returns true if any collected entry has the given action.
func (m *MockAuditRepo) HasAction(action string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

var _ domain.AuditRepository = (*MockAuditRepo)(nil)

// === Policy Repository Mock ===

// MockPolicyRepo implements domain.PolicyRepository for testing.
type MockPolicyRepo struct {
	GetFn    func(ctx context.Context) (*domain.PolicyRecord, error)
	UpsertFn func(ctx context.Context, m domain.PolicyMatrix, editorID int64) (*domain.PolicyRecord, error)

	mu       sync.Mutex
	GetCalls int
}

// Get implements the interface method for testing.
func (m *MockPolicyRepo) Get(ctx context.Context) (*domain.PolicyRecord, error) {
	m.mu.Lock()
	m.GetCalls++
	m.mu.Unlock()
	if m.GetFn != nil {
		return m.GetFn(ctx)
	}
	panic("unexpected call to MockPolicyRepo.Get")
}

// Upsert implements the interface method for testing.
func (m *MockPolicyRepo) Upsert(ctx context.Context, matrix domain.PolicyMatrix, editorID int64) (*domain.PolicyRecord, error) {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, matrix, editorID)
	}
	panic("unexpected call to MockPolicyRepo.Upsert")
}

// Calls returns how many times Get was called.
func (m *MockPolicyRepo) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.GetCalls
}

var _ domain.PolicyRepository = (*MockPolicyRepo)(nil)

// === Transaction Manager Mock ===

// MockTxManager runs fn directly. It records whether the unit of work failed
// so tests can assert rollback paths.
type MockTxManager struct {
	RolledBack bool
	Committed  bool
}

// RunInTx implements domain.TxManager.
func (m *MockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		m.RolledBack = true
		return err
	}
	m.Committed = true
	return nil
}

var _ domain.TxManager = (*MockTxManager)(nil)

// === Contexts ===

// ActorCtx returns a context carrying an active actor with the given role.
func ActorCtx(id int64, role domain.Role) context.Context {
	return domain.WithActor(context.Background(), domain.ContextActor{
		ID: id, Role: role, MembershipStatus: domain.MembershipActive,
	})
}

// AdminCtx returns a context carrying an active admin.
func AdminCtx(id int64) context.Context {
	return ActorCtx(id, domain.RoleAdmin)
}
