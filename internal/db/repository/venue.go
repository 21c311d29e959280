package repository

import (
	"context"
	"database/sql"

	"tablekeep/internal/domain"
)

type VenueRepo struct {
	db *sql.DB
}

var _ domain.VenueRepository = (*VenueRepo)(nil)

func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

const diningRoomColumns = `id, name, legal_capacity, is_active, display_order, created_at, updated_at`

func scanDiningRoom(s rowScanner) (*domain.DiningRoom, error) {
	var (
		d      domain.DiningRoom
		active int64
	)
	if err := s.Scan(&d.ID, &d.Name, &d.LegalCapacity, &active, &d.DisplayOrder, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.IsActive = active != 0
	return &d, nil
}

func (r *VenueRepo) CreateDiningRoom(ctx context.Context, d *domain.DiningRoom) (*domain.DiningRoom, error) {
	ts := now()
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO dining_rooms (name, legal_capacity, is_active, display_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.Name, d.LegalCapacity, boolToInt(d.IsActive), d.DisplayOrder, ts, ts)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetDiningRoom(ctx, id)
}

func (r *VenueRepo) GetDiningRoom(ctx context.Context, id int64) (*domain.DiningRoom, error) {
	d, err := scanDiningRoom(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+diningRoomColumns+` FROM dining_rooms WHERE id = ?`, id))
	if err != nil {
		return nil, mapDBError(err)
	}
	return d, nil
}

func (r *VenueRepo) ListDiningRooms(ctx context.Context) ([]domain.DiningRoom, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+diningRoomColumns+` FROM dining_rooms ORDER BY display_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.DiningRoom
	for rows.Next() {
		d, err := scanDiningRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *d)
	}
	return rooms, rows.Err()
}

func (r *VenueRepo) SetDiningRoomActive(ctx context.Context, id int64, active bool) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE dining_rooms SET is_active = ?, updated_at = ? WHERE id = ?`,
		boolToInt(active), now(), id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("dining room %d not found", id)
	}
	return nil
}

func (r *VenueRepo) CreateTable(ctx context.Context, t *domain.Table) (*domain.Table, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO tables (dining_room_id, table_number, seat_count) VALUES (?, ?, ?)`,
		t.DiningRoomID, t.TableNumber, t.SeatCount)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetTable(ctx, id)
}

func (r *VenueRepo) GetTable(ctx context.Context, id int64) (*domain.Table, error) {
	var t domain.Table
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, dining_room_id, table_number, seat_count FROM tables WHERE id = ?`, id).
		Scan(&t.ID, &t.DiningRoomID, &t.TableNumber, &t.SeatCount)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &t, nil
}

func (r *VenueRepo) ListTables(ctx context.Context, diningRoomID int64) ([]domain.Table, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, dining_room_id, table_number, seat_count FROM tables WHERE dining_room_id = ? ORDER BY id`,
		diningRoomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []domain.Table
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.ID, &t.DiningRoomID, &t.TableNumber, &t.SeatCount); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// CreateSeats numbers seats 1..count for the table.
func (r *VenueRepo) CreateSeats(ctx context.Context, tableID int64, count int) error {
	q := conn(ctx, r.db)
	for n := 1; n <= count; n++ {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO seats (table_id, seat_number) VALUES (?, ?)`, tableID, n); err != nil {
			return mapDBError(err)
		}
	}
	return nil
}

func (r *VenueRepo) ListSeats(ctx context.Context, tableID int64) ([]domain.Seat, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, table_id, seat_number FROM seats WHERE table_id = ? ORDER BY seat_number`, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []domain.Seat
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.ID, &s.TableID, &s.SeatNumber); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

func (r *VenueRepo) GetSeat(ctx context.Context, id int64) (*domain.Seat, error) {
	var s domain.Seat
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, table_id, seat_number FROM seats WHERE id = ?`, id).
		Scan(&s.ID, &s.TableID, &s.SeatNumber)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &s, nil
}
