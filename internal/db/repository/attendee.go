package repository

import (
	"context"
	"database/sql"

	"tablekeep/internal/domain"
)

type AttendeeRepo struct {
	db *sql.DB
}

var _ domain.AttendeeRepository = (*AttendeeRepo)(nil)

func NewAttendeeRepo(db *sql.DB) *AttendeeRepo {
	return &AttendeeRepo{db: db}
}

const attendeeColumns = `id, reservation_id, member_id, seat_id, name, attendee_type, dietary_restrictions, created_by_user_id, created_at, updated_at`

func scanAttendee(s rowScanner) (*domain.Attendee, error) {
	var (
		a         domain.Attendee
		memberID  sql.NullInt64
		seatID    sql.NullInt64
		kind      string
		dietary   sql.NullString
		createdBy sql.NullInt64
	)
	if err := s.Scan(&a.ID, &a.ReservationID, &memberID, &seatID, &a.Name, &kind, &dietary, &createdBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.MemberID = int64Ptr(memberID)
	a.SeatID = int64Ptr(seatID)
	a.Type = domain.AttendeeType(kind)
	a.DietaryRestrictions = jsonFromNull(dietary)
	a.CreatedBy = int64Ptr(createdBy)
	return &a, nil
}

func (r *AttendeeRepo) ListByReservation(ctx context.Context, reservationID int64) ([]domain.Attendee, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+attendeeColumns+` FROM reservation_attendees WHERE reservation_id = ? ORDER BY id`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Attendee
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AttendeeRepo) GetByID(ctx context.Context, id int64) (*domain.Attendee, error) {
	a, err := scanAttendee(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+attendeeColumns+` FROM reservation_attendees WHERE id = ?`, id))
	if err != nil {
		return nil, mapDBError(err)
	}
	return a, nil
}

func (r *AttendeeRepo) Create(ctx context.Context, a *domain.Attendee) (*domain.Attendee, error) {
	ts := now()
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO reservation_attendees (reservation_id, member_id, seat_id, name, attendee_type,
		   dietary_restrictions, created_by_user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ReservationID, nullInt64(a.MemberID), nullInt64(a.SeatID), a.Name, string(a.Type),
		nullJSON(a.DietaryRestrictions), nullInt64(a.CreatedBy), ts, ts)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *AttendeeRepo) Update(ctx context.Context, a *domain.Attendee) (*domain.Attendee, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE reservation_attendees
		 SET member_id = ?, seat_id = ?, name = ?, attendee_type = ?, dietary_restrictions = ?, updated_at = ?
		 WHERE id = ?`,
		nullInt64(a.MemberID), nullInt64(a.SeatID), a.Name, string(a.Type), nullJSON(a.DietaryRestrictions), now(), a.ID)
	if err != nil {
		return nil, mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound("attendee %d not found", a.ID)
	}
	return r.GetByID(ctx, a.ID)
}

// Delete removes the attendee; its order items cascade.
func (r *AttendeeRepo) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM reservation_attendees WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("attendee %d not found", id)
	}
	return nil
}

func (r *AttendeeRepo) ClearSeats(ctx context.Context, reservationID int64) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE reservation_attendees SET seat_id = NULL, updated_at = ?
		 WHERE reservation_id = ? AND seat_id IS NOT NULL`, now(), reservationID)
	if err != nil {
		return 0, mapDBError(err)
	}
	return res.RowsAffected()
}

func (r *AttendeeRepo) CountByReservation(ctx context.Context, reservationID int64) (int, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservation_attendees WHERE reservation_id = ?`, reservationID).Scan(&n)
	return n, err
}
