package repository

import (
	"context"
	"database/sql"

	"tablekeep/internal/domain"
)

type NotificationRepo struct {
	db *sql.DB
}

var _ domain.NotificationRepository = (*NotificationRepo)(nil)

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

const notificationColumns = `id, user_id, notification_type, channel, subject, message, resource_type, resource_id, read_at, created_at`

func scanNotification(s rowScanner) (*domain.Notification, error) {
	var (
		n            domain.Notification
		subject      sql.NullString
		resourceType sql.NullString
		resourceID   sql.NullInt64
		readAt       sql.NullTime
	)
	if err := s.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Channel, &subject, &n.Message,
		&resourceType, &resourceID, &readAt, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Subject = stringPtr(subject)
	n.ResourceType = stringPtr(resourceType)
	n.ResourceID = int64Ptr(resourceID)
	n.ReadAt = timePtr(readAt)
	return &n, nil
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	channel := n.Channel
	if channel == "" {
		channel = domain.ChannelInApp
	}
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO notifications (user_id, notification_type, channel, subject, message, resource_type, resource_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.RecipientID, n.Type, channel, nullString(n.Subject), n.Message,
		nullString(n.ResourceType), nullInt64(n.ResourceID), now())
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *NotificationRepo) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	n, err := scanNotification(conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id))
	if err != nil {
		return nil, mapDBError(err)
	}
	return n, nil
}

// List returns the newest notifications of one recipient first.
func (r *NotificationRepo) List(ctx context.Context, filter domain.NotificationFilter) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	args := []any{filter.RecipientID}
	if filter.UnreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (r *NotificationRepo) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	var n int64
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read_at IS NULL`, recipientID).Scan(&n)
	return n, err
}

// MarkRead stamps read_at once; marking an already read notification keeps
// the original timestamp.
func (r *NotificationRepo) MarkRead(ctx context.Context, id int64) (*domain.Notification, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE notifications SET read_at = COALESCE(read_at, ?) WHERE id = ?`, now(), id)
	if err != nil {
		return nil, mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound("notification %d not found", id)
	}
	return r.GetByID(ctx, id)
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE notifications SET read_at = ? WHERE user_id = ? AND read_at IS NULL`, now(), recipientID)
	if err != nil {
		return 0, mapDBError(err)
	}
	return res.RowsAffected()
}

func (r *NotificationRepo) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("notification %d not found", id)
	}
	return nil
}
