package repository

import (
	"context"
	"database/sql"
	"strings"

	"tablekeep/internal/domain"
)

const actorColumns = `id, email, name, role, membership_status, guest_allowance, created_by_user_id, created_at, updated_at`

type ActorRepo struct {
	db *sql.DB
}

var _ domain.ActorRepository = (*ActorRepo)(nil)

func NewActorRepo(db *sql.DB) *ActorRepo {
	return &ActorRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActor(s rowScanner) (*domain.Actor, error) {
	var (
		a         domain.Actor
		role      string
		status    string
		createdBy sql.NullInt64
	)
	if err := s.Scan(&a.ID, &a.Email, &a.Name, &role, &status, &a.GuestAllowance, &createdBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Role = domain.Role(role)
	a.MembershipStatus = domain.MembershipStatus(status)
	a.CreatedBy = int64Ptr(createdBy)
	return &a, nil
}

func (r *ActorRepo) Create(ctx context.Context, a *domain.Actor) (*domain.Actor, error) {
	ts := now()
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO users (email, name, role, membership_status, guest_allowance, created_by_user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.ToLower(strings.TrimSpace(a.Email)), a.Name, string(a.Role), string(a.MembershipStatus),
		a.GuestAllowance, nullInt64(a.CreatedBy), ts, ts)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ActorRepo) GetByID(ctx context.Context, id int64) (*domain.Actor, error) {
	a, err := scanActor(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+actorColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, mapDBError(err)
	}
	return a, nil
}

func (r *ActorRepo) GetByEmail(ctx context.Context, email string) (*domain.Actor, error) {
	a, err := scanActor(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+actorColumns+` FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return nil, mapDBError(err)
	}
	return a, nil
}

func (r *ActorRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Actor, int64, error) {
	q := conn(ctx, r.db)

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+actorColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var actors []domain.Actor
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, 0, err
		}
		actors = append(actors, *a)
	}
	return actors, total, rows.Err()
}

func (r *ActorRepo) Update(ctx context.Context, id int64, upd domain.ActorUpdate) (*domain.Actor, error) {
	sets := []string{"updated_at = ?"}
	args := []any{now()}
	if upd.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, string(*upd.Role))
	}
	if upd.MembershipStatus != nil {
		sets = append(sets, "membership_status = ?")
		args = append(args, string(*upd.MembershipStatus))
	}
	if upd.GuestAllowance != nil {
		sets = append(sets, "guest_allowance = ?")
		args = append(args, *upd.GuestAllowance)
	}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	args = append(args, id)

	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound("user %d not found", id)
	}
	return r.GetByID(ctx, id)
}
