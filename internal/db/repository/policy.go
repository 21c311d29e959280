package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"tablekeep/internal/domain"
)

// PolicySettingKey is the system_settings key holding the policy matrix.
const PolicySettingKey = "permissions_matrix"

// PolicyRepo stores the policy matrix as one versioned system_settings row.
type PolicyRepo struct {
	db *sql.DB
}

var _ domain.PolicyRepository = (*PolicyRepo)(nil)

func NewPolicyRepo(db *sql.DB) *PolicyRepo {
	return &PolicyRepo{db: db}
}

func (r *PolicyRepo) Get(ctx context.Context) (*domain.PolicyRecord, error) {
	var (
		raw       string
		rec       domain.PolicyRecord
		updatedBy sql.NullInt64
	)
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT value, version, updated_by_user_id, updated_at FROM system_settings WHERE key = ?`,
		PolicySettingKey).Scan(&raw, &rec.Version, &updatedBy, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("policy matrix has not been saved")
	}
	if err != nil {
		return nil, err
	}

	var m domain.PolicyMatrix
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("decode policy matrix: %w", err)
	}
	if m == nil {
		m = domain.PolicyMatrix{}
	}
	rec.Matrix = m
	rec.UpdatedBy = int64Ptr(updatedBy)
	return &rec, nil
}

func (r *PolicyRepo) Upsert(ctx context.Context, m domain.PolicyMatrix, editorID int64) (*domain.PolicyRecord, error) {
	if m == nil {
		m = domain.PolicyMatrix{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode policy matrix: %w", err)
	}

	_, err = conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO system_settings (key, value, version, updated_by_user_id, updated_at)
		 VALUES (?, ?, 1, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   value = excluded.value,
		   version = system_settings.version + 1,
		   updated_by_user_id = excluded.updated_by_user_id,
		   updated_at = excluded.updated_at`,
		PolicySettingKey, string(raw), editorID, now())
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.Get(ctx)
}
