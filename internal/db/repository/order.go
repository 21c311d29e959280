package repository

import (
	"context"
	"database/sql"

	"tablekeep/internal/domain"
)

type OrderRepo struct {
	db *sql.DB
}

var _ domain.OrderRepository = (*OrderRepo)(nil)

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Create(ctx context.Context, reservationID int64) (*domain.Order, error) {
	ts := now()
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO orders (reservation_id, created_at, updated_at) VALUES (?, ?, ?)`,
		reservationID, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict("reservation %d already has an order", reservationID)
		}
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, reservation_id, status, created_at, updated_at FROM orders WHERE id = ?`, id).
		Scan(&o.ID, &o.ReservationID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &o, nil
}

func (r *OrderRepo) ExistsForReservation(ctx context.Context, reservationID int64) (bool, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE reservation_id = ?`, reservationID).Scan(&n)
	return n > 0, err
}

func (r *OrderRepo) AddItem(ctx context.Context, item *domain.OrderItem) (*domain.OrderItem, error) {
	qty := item.Quantity
	if qty <= 0 {
		qty = 1
	}
	ts := now()
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO order_items (order_id, reservation_attendee_id, menu_item_id, quantity, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		item.OrderID, item.AttendeeID, item.MenuItemID, qty, ts)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *item
	out.ID = id
	out.Quantity = qty
	out.CreatedAt = ts
	return &out, nil
}

func (r *OrderRepo) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, order_id, reservation_attendee_id, menu_item_id, quantity, created_at
		 FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.AttendeeID, &it.MenuItemID, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *OrderRepo) CreateMenuItem(ctx context.Context, m *domain.MenuItem) (*domain.MenuItem, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO menu_items (name, category, is_available) VALUES (?, ?, ?)`,
		m.Name, m.Category, boolToInt(m.IsAvailable))
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetMenuItem(ctx, id)
}

func (r *OrderRepo) GetMenuItem(ctx context.Context, id int64) (*domain.MenuItem, error) {
	var (
		m         domain.MenuItem
		available int64
	)
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, name, category, is_available FROM menu_items WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.Category, &available)
	if err != nil {
		return nil, mapDBError(err)
	}
	m.IsAvailable = available != 0
	return &m, nil
}
