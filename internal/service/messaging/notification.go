package messaging

import (
	"context"

	"tablekeep/internal/domain"
	"tablekeep/internal/service/security"
)

// DefaultInboxLimit caps a notification listing.
const DefaultInboxLimit = 20

// NotificationService is the caller's in-app inbox. Listing and read state
// always concern the caller's own notifications, whatever the scope.
type NotificationService struct {
	repo domain.NotificationRepository
	eval *security.Evaluator
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(repo domain.NotificationRepository, eval *security.Evaluator) *NotificationService {
	return &NotificationService{repo: repo, eval: eval}
}

// List returns the caller's most recent notifications.
func (s *NotificationService) List(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceNotification, domain.ActionRead)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, domain.NotificationFilter{
		RecipientID: access.ActorID,
		UnreadOnly:  unreadOnly,
		Limit:       DefaultInboxLimit,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return items, nil
}

// UnreadCount returns how many of the caller's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceNotification, domain.ActionRead)
	if err != nil {
		return 0, err
	}
	return s.repo.CountUnread(ctx, access.ActorID)
}

// MarkRead marks one notification read. Only its recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, id int64) (*domain.Notification, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceNotification, domain.ActionRead)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != access.ActorID {
		return nil, domain.ErrAccessDenied("notification %d is addressed to someone else", id)
	}
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead marks every unread notification of the caller read and
// returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceNotification, domain.ActionRead)
	if err != nil {
		return 0, err
	}
	return s.repo.MarkAllRead(ctx, access.ActorID)
}

// Delete removes a notification within the caller's delete scope.
func (s *NotificationService) Delete(ctx context.Context, id int64) error {
	access, err := s.eval.Authorize(ctx, domain.ResourceNotification, domain.ActionDelete)
	if err != nil {
		return err
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Check(n.RecipientID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
