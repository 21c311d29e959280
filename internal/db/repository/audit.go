package repository

import (
	"context"
	"database/sql"
	"strings"

	"tablekeep/internal/domain"
)

// AuditRepo appends to audit_log. It exposes no update or delete.
type AuditRepo struct {
	db *sql.DB
}

var _ domain.AuditRepository = (*AuditRepo)(nil)

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if e.ID == "" {
		e.ID = domain.NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO audit_log (id, actor_id, action, resource_type, resource_id, before_snapshot, after_snapshot, origin_address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, nullInt64(e.ActorID), e.Action, e.ResourceType, nullString(e.ResourceID),
		nullJSON(e.Before), nullJSON(e.After), e.OriginAddress, e.CreatedAt.UTC())
	return mapDBError(err)
}

func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	var (
		where []string
		args  []any
	)
	if filter.ActorID != nil {
		where = append(where, "actor_id = ?")
		args = append(args, *filter.ActorID)
	}
	if filter.Action != nil {
		where = append(where, "action = ?")
		args = append(args, *filter.Action)
	}
	if filter.ResourceType != nil {
		where = append(where, "resource_type = ?")
		args = append(args, *filter.ResourceType)
	}
	if filter.ResourceID != nil {
		where = append(where, "resource_id = ?")
		args = append(args, *filter.ResourceID)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	q := conn(ctx, r.db)

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, actor_id, action, resource_type, resource_id, before_snapshot, after_snapshot, origin_address, created_at
		 FROM audit_log`+clause+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, filter.Page.Limit(), filter.Page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e          domain.AuditEntry
			actorID    sql.NullInt64
			resourceID sql.NullString
			before     sql.NullString
			after      sql.NullString
			origin     sql.NullString
		)
		if err := rows.Scan(&e.ID, &actorID, &e.Action, &e.ResourceType, &resourceID, &before, &after, &origin, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.ActorID = int64Ptr(actorID)
		e.ResourceID = stringPtr(resourceID)
		e.Before = jsonFromNull(before)
		e.After = jsonFromNull(after)
		e.OriginAddress = origin.String
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
