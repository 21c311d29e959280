package repository

import (
	"context"
	"database/sql"
	"strings"

	"tablekeep/internal/domain"
)

type ReservationRepo struct {
	db *sql.DB
}

var _ domain.ReservationRepository = (*ReservationRepo)(nil)

func NewReservationRepo(db *sql.DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

// party_size is computed from the attendee rows on every read.
const reservationSelect = `SELECT r.id, r.user_id, r.dining_room_id, r.table_id, r.date, r.meal_type,
	r.start_time, r.end_time, r.status, r.notes, r.created_by_user_id, r.cancelled_by_user_id,
	r.confirmed_at, r.cancelled_at, r.fired_at, r.created_at, r.updated_at,
	(SELECT COUNT(*) FROM reservation_attendees a WHERE a.reservation_id = r.id)
	FROM reservations r`

func scanReservation(s rowScanner) (*domain.Reservation, error) {
	var (
		res         domain.Reservation
		status      string
		notes       sql.NullString
		createdBy   sql.NullInt64
		cancelledBy sql.NullInt64
		confirmedAt sql.NullTime
		cancelledAt sql.NullTime
		firedAt     sql.NullTime
	)
	if err := s.Scan(&res.ID, &res.OwnerID, &res.DiningRoomID, &res.TableID, &res.Date, &res.MealType,
		&res.StartTime, &res.EndTime, &status, &notes, &createdBy, &cancelledBy,
		&confirmedAt, &cancelledAt, &firedAt, &res.CreatedAt, &res.UpdatedAt, &res.PartySize); err != nil {
		return nil, err
	}
	res.Status = domain.ReservationStatus(status)
	res.Notes = stringPtr(notes)
	res.CreatedBy = int64Ptr(createdBy)
	res.CancelledBy = int64Ptr(cancelledBy)
	res.ConfirmedAt = timePtr(confirmedAt)
	res.CancelledAt = timePtr(cancelledAt)
	res.FiredAt = timePtr(firedAt)
	return &res, nil
}

// Create inserts the reservation. A unique index on (date, meal_type,
// table_id) over non-cancelled rows makes this the authoritative slot check;
// its violation is returned as a slot ConflictError.
func (r *ReservationRepo) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	status := res.Status
	if status == "" {
		status = domain.StatusPending
	}
	ts := now()
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO reservations (user_id, dining_room_id, table_id, date, meal_type, start_time, end_time,
		   status, notes, created_by_user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.OwnerID, res.DiningRoomID, res.TableID, res.Date, res.MealType, res.StartTime, res.EndTime,
		string(status), nullString(res.Notes), nullInt64(res.CreatedBy), ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrSlotTaken(res.Slot())
		}
		return nil, mapDBError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ReservationRepo) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := scanReservation(conn(ctx, r.db).QueryRowContext(ctx, reservationSelect+` WHERE r.id = ?`, id))
	if err != nil {
		return nil, mapDBError(err)
	}
	return res, nil
}

func (r *ReservationRepo) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int64, error) {
	var (
		where []string
		args  []any
	)
	if filter.OwnerID != nil {
		where = append(where, "r.user_id = ?")
		args = append(args, *filter.OwnerID)
	}
	if filter.DiningRoomID != nil {
		where = append(where, "r.dining_room_id = ?")
		args = append(args, *filter.DiningRoomID)
	}
	if filter.Date != "" {
		where = append(where, "r.date = ?")
		args = append(args, filter.Date)
	}
	if filter.MealType != "" {
		where = append(where, "r.meal_type = ?")
		args = append(args, filter.MealType)
	}
	if filter.Status != nil {
		where = append(where, "r.status = ?")
		args = append(args, string(*filter.Status))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	q := conn(ctx, r.db)

	var total int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations r`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.QueryContext(ctx,
		reservationSelect+clause+` ORDER BY r.date, r.start_time, r.id LIMIT ? OFFSET ?`,
		append(args, filter.Page.Limit(), filter.Page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *res)
	}
	return out, total, rows.Err()
}

// Update writes every mutable column of res, including lifecycle stamps.
func (r *ReservationRepo) Update(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE reservations SET dining_room_id = ?, table_id = ?, date = ?, meal_type = ?,
		   start_time = ?, end_time = ?, status = ?, notes = ?, cancelled_by_user_id = ?,
		   confirmed_at = ?, cancelled_at = ?, fired_at = ?, updated_at = ?
		 WHERE id = ?`,
		res.DiningRoomID, res.TableID, res.Date, res.MealType, res.StartTime, res.EndTime,
		string(res.Status), nullString(res.Notes), nullInt64(res.CancelledBy),
		nullTime(res.ConfirmedAt), nullTime(res.CancelledAt), nullTime(res.FiredAt), now(), res.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrSlotTaken(res.Slot())
		}
		return nil, mapDBError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound("reservation %d not found", res.ID)
	}
	return r.GetByID(ctx, res.ID)
}

// Delete removes the reservation; attendees cascade. An existing order makes
// the delete fail with a ConflictError.
func (r *ReservationRepo) Delete(ctx context.Context, id int64) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound("reservation %d not found", id)
	}
	return nil
}

func (r *ReservationRepo) FindAvailableTables(ctx context.Context, diningRoomID int64, date, mealType string, minSeats, limit int) ([]domain.TableAlternative, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT t.id, t.table_number, t.seat_count
		 FROM tables t
		 WHERE t.dining_room_id = ?
		   AND t.seat_count >= ?
		   AND NOT EXISTS (
		     SELECT 1 FROM reservations r
		     WHERE r.table_id = t.id AND r.date = ? AND r.meal_type = ? AND r.status <> 'cancelled'
		   )
		 ORDER BY t.seat_count, t.id
		 LIMIT ?`,
		diningRoomID, minSeats, date, mealType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TableAlternative
	for rows.Next() {
		var alt domain.TableAlternative
		if err := rows.Scan(&alt.TableID, &alt.TableNumber, &alt.SeatCount); err != nil {
			return nil, err
		}
		out = append(out, alt)
	}
	return out, rows.Err()
}
