package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"tablekeep/internal/domain"
	"tablekeep/internal/metrics"
	"tablekeep/internal/service/auditutil"
)

// policyResourceID identifies the single persisted matrix in audit entries.
const policyResourceID = "permissions_matrix"

// PolicyStore is the source of truth for the policy matrix. Reads go through
// the injected PolicyCache; writes are transactional and audited.
type PolicyStore struct {
	repo      domain.PolicyRepository
	audit     domain.AuditRepository
	tx        domain.TxManager
	cache     *PolicyCache
	bootstrap domain.PolicyMatrix
	logger    *slog.Logger
	metrics   *metrics.Metrics

	group singleflight.Group
}

// NewPolicyStore creates a PolicyStore. A nil bootstrap matrix means the
// built-in default.
func NewPolicyStore(
	repo domain.PolicyRepository,
	audit domain.AuditRepository,
	tx domain.TxManager,
	cache *PolicyCache,
	bootstrap domain.PolicyMatrix,
	logger *slog.Logger,
	m *metrics.Metrics,
) *PolicyStore {
	if bootstrap == nil {
		bootstrap = domain.DefaultPolicyMatrix()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PolicyStore{
		repo:      repo,
		audit:     audit,
		tx:        tx,
		cache:     cache,
		bootstrap: bootstrap,
		logger:    logger.With("component", "policy_store"),
		metrics:   m,
	}
}

type loadedPolicy struct {
	matrix  domain.PolicyMatrix
	version int64
}

// Load returns the current matrix. The result is shared and must not be
// mutated; use Clone for a private copy. Load must not be called with a
// context carrying an open transaction.
func (s *PolicyStore) Load(ctx context.Context) (domain.PolicyMatrix, error) {
	if m, _, ok := s.cache.Get(); ok {
		s.metrics.PolicyCacheLookup("hit")
		return m, nil
	}
	s.metrics.PolicyCacheLookup("miss")

	// Callers that arrive after an Invalidate use a new key and never join
	// a read that started before it.
	// The shared read outlives any single caller's cancellation.
	gen := s.cache.Generation()
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		p, err := s.read(loadCtx)
		if err != nil {
			return nil, err
		}
		if s.cache.SetIfGeneration(gen, p.matrix, p.version) {
			s.metrics.PolicyVersion(p.version)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(loadedPolicy).matrix, nil
}

// read fetches the persisted matrix, falling back to the bootstrap matrix
// when none has been saved yet.
func (s *PolicyStore) read(ctx context.Context) (loadedPolicy, error) {
	rec, err := s.repo.Get(ctx)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return loadedPolicy{matrix: s.bootstrap.Clone()}, nil
		}
		return loadedPolicy{}, fmt.Errorf("load policy matrix: %w", err)
	}
	m, dropped := rec.Matrix.Sanitize()
	if len(dropped) > 0 {
		s.logger.Warn("ignoring unrecognised policy entries", "entries", dropped, "version", rec.Version)
	}
	return loadedPolicy{matrix: m, version: rec.Version}, nil
}

// Save validates and persists a new matrix. The prior matrix, the new matrix
// and the audit entry commit together; on failure nothing changes and the
// cache is left alone. After commit the cache is invalidated and reloaded so
// the next Load observes the new matrix.
func (s *PolicyStore) Save(ctx context.Context, m domain.PolicyMatrix, editorID int64, origin string) error {
	if m == nil {
		m = domain.PolicyMatrix{}
	}
	if err := m.Validate(); err != nil {
		return err
	}
	after, dropped := m.Sanitize()
	if len(dropped) > 0 {
		s.logger.Debug("dropping fixed policy entries", "entries", dropped)
	}

	var rec *domain.PolicyRecord
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		before, err := s.read(ctx)
		if err != nil {
			return err
		}
		rec, err = s.repo.Upsert(ctx, after, editorID)
		if err != nil {
			return fmt.Errorf("persist policy matrix: %w", err)
		}
		return auditutil.Record(ctx, s.audit, auditutil.Event{
			ActorID:       editorID,
			Action:        domain.AuditUpdatePermissions,
			ResourceType:  domain.ResourcePolicyMatrix,
			ResourceID:    policyResourceID,
			Before:        before.matrix,
			After:         after,
			OriginAddress: origin,
		})
	})
	if err != nil {
		s.logger.Error("policy save failed", "editor_id", editorID, "error", err)
		return err
	}

	s.cache.Invalidate()
	if _, err := s.Load(ctx); err != nil {
		// The save is committed; the next Load retries the read.
		s.logger.Warn("policy reload after save failed", "error", err)
	}
	s.logger.Info("policy matrix updated", "editor_id", editorID, "version", rec.Version)
	return nil
}

// LoadBootstrapMatrix reads a bootstrap matrix from a YAML file with the same
// nested shape as the persisted JSON. An empty path yields the built-in
// default.
func LoadBootstrapMatrix(path string) (domain.PolicyMatrix, error) {
	if path == "" {
		return domain.DefaultPolicyMatrix(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("read bootstrap policy: %w", err)
	}
	var m domain.PolicyMatrix
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse bootstrap policy %s: %w", path, err)
	}
	if m == nil {
		m = domain.PolicyMatrix{}
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("bootstrap policy %s: %w", path, err)
	}
	m, _ = m.Sanitize()
	return m, nil
}
