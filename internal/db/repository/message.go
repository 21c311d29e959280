package repository

import (
	"context"
	"database/sql"

	"tablekeep/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, reservation_id, sender_user_id, message, message_type, is_internal, parent_message_id, created_at`

func scanMessage(s rowScanner) (*domain.ReservationMessage, error) {
	var (
		m        domain.ReservationMessage
		internal int64
		parentID sql.NullInt64
	)
	if err := s.Scan(&m.ID, &m.ReservationID, &m.SenderID, &m.Message, &m.MessageType, &internal, &parentID, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.IsInternal = internal != 0
	m.ParentMessageID = int64Ptr(parentID)
	return &m, nil
}

func (r *MessageRepo) Create(ctx context.Context, m *domain.ReservationMessage) (*domain.ReservationMessage, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO reservation_messages (reservation_id, sender_user_id, message, message_type, is_internal, parent_message_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ReservationID, m.SenderID, m.Message, m.MessageType, boolToInt(m.IsInternal), nullInt64(m.ParentMessageID), now())
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.ReservationMessage, error) {
	m, err := scanMessage(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM reservation_messages WHERE id = ?`, id))
	if err != nil {
		return nil, mapDBError(err)
	}
	return m, nil
}

func (r *MessageRepo) ListByReservation(ctx context.Context, reservationID int64, includeInternal bool) ([]domain.ReservationMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM reservation_messages WHERE reservation_id = ?`
	if !includeInternal {
		query += ` AND is_internal = 0`
	}
	query += ` ORDER BY created_at, id`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ReservationMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
