package repository

import (
	"context"
	"database/sql"
	"strings"

	"tablekeep/internal/domain"
)

type MemberRepo struct {
	db *sql.DB
}

var _ domain.MemberRepository = (*MemberRepo)(nil)

func NewMemberRepo(db *sql.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

const memberColumns = `id, user_id, name, relation, dietary_restrictions, created_by_user_id, created_at, updated_at`

func scanMember(s rowScanner) (*domain.MemberProfile, error) {
	var (
		m         domain.MemberProfile
		relation  sql.NullString
		dietary   sql.NullString
		createdBy sql.NullInt64
	)
	if err := s.Scan(&m.ID, &m.OwnerID, &m.Name, &relation, &dietary, &createdBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Relation = stringPtr(relation)
	m.DietaryRestrictions = jsonFromNull(dietary)
	m.CreatedBy = int64Ptr(createdBy)
	return &m, nil
}

func (r *MemberRepo) Create(ctx context.Context, m *domain.MemberProfile) (*domain.MemberProfile, error) {
	ts := now()
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO members (user_id, created_by_user_id, name, relation, dietary_restrictions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.OwnerID, nullInt64(m.CreatedBy), m.Name, nullString(m.Relation), nullJSON(m.DietaryRestrictions), ts, ts)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *MemberRepo) GetByID(ctx context.Context, id int64) (*domain.MemberProfile, error) {
	m, err := scanMember(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = ?`, id))
	if err != nil {
		return nil, mapDBError(err)
	}
	return m, nil
}

// List returns profiles owned by ownerID, or every profile when ownerID is nil.
func (r *MemberRepo) List(ctx context.Context, ownerID *int64) ([]domain.MemberProfile, error) {
	query := `SELECT ` + memberColumns + ` FROM members`
	var args []any
	if ownerID != nil {
		query += ` WHERE user_id = ?`
		args = append(args, *ownerID)
	}
	query += ` ORDER BY id`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MemberProfile
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *MemberRepo) Update(ctx context.Context, id int64, upd domain.MemberUpdate) (*domain.MemberProfile, error) {
	sets := []string{"updated_at = ?"}
	args := []any{now()}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Relation != nil {
		sets = append(sets, "relation = ?")
		args = append(args, nullString(upd.Relation))
	}
	if upd.DietaryRestrictions != nil {
		sets = append(sets, "dietary_restrictions = ?")
		args = append(args, nullJSON(upd.DietaryRestrictions))
	}
	args = append(args, id)

	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE members SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound("member %d not found", id)
	}
	return r.GetByID(ctx, id)
}

func (r *MemberRepo) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict("member %d is listed on a reservation manifest", id)
		}
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("member %d not found", id)
	}
	return nil
}
