// Package messaging serves the per-reservation message thread and the
// in-app notification inbox.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tablekeep/internal/domain"
	"tablekeep/internal/service/security"
)

// Message types a thread accepts. Callers without unrestricted access may
// only send text.
const (
	TypeText         = "text"
	TypeSystem       = "system"
	TypeNotification = "notification"
	TypeAlert        = "alert"
)

const maxMessageLength = 4000

// SendInput is one message to append to a thread.
type SendInput struct {
	Message         string `json:"message"`
	MessageType     string `json:"message_type"`
	IsInternal      bool   `json:"is_internal"`
	ParentMessageID *int64 `json:"parent_message_id"`
}

// Deps holds what the messaging services need.
type Deps struct {
	Messages      domain.MessageRepository
	Notifications domain.NotificationRepository
	Reservations  domain.ReservationRepository
	Tx            domain.TxManager
	Evaluator     *security.Evaluator
	Logger        *slog.Logger
}

// Service manages reservation message threads.
type Service struct {
	messages      domain.MessageRepository
	notifications domain.NotificationRepository
	reservations  domain.ReservationRepository
	tx            domain.TxManager
	eval          *security.Evaluator
	logger        *slog.Logger
}

// NewService creates a thread Service.
func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		messages:      d.Messages,
		notifications: d.Notifications,
		reservations:  d.Reservations,
		tx:            d.Tx,
		eval:          d.Evaluator,
		logger:        logger.With("component", "messaging"),
	}
}

// Thread returns the messages of a reservation, oldest first. Internal
// messages are only listed for callers with unrestricted read access.
func (s *Service) Thread(ctx context.Context, reservationID int64) ([]domain.ReservationMessage, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceReservationMessage, domain.ActionRead)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedReservation(ctx, access, reservationID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByReservation(ctx, reservationID, access.Scope == domain.ScopeAll)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.ReservationMessage{}
	}
	return msgs, nil
}

// Send appends a message to the thread of a reservation. A message that is
// not internal and comes from someone other than the owner also notifies
// the owner, in the same transaction.
func (s *Service) Send(ctx context.Context, reservationID int64, in SendInput) (*domain.ReservationMessage, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceReservationMessage, domain.ActionWrite)
	if err != nil {
		return nil, err
	}
	body := strings.TrimSpace(in.Message)
	if body == "" {
		return nil, domain.ErrValidationField("message", "message is required")
	}
	if len(body) > maxMessageLength {
		return nil, domain.ErrValidationField("message", "message is longer than %d characters", maxMessageLength)
	}
	kind := in.MessageType
	if kind == "" {
		kind = TypeText
	}
	switch kind {
	case TypeText, TypeSystem, TypeNotification, TypeAlert:
	default:
		return nil, domain.ErrValidationField("message_type", "unknown message type %q", kind)
	}
	unrestricted := access.Scope == domain.ScopeAll
	if !unrestricted {
		// Owners never write staff notes.
		in.IsInternal = false
		if kind != TypeText {
			return nil, domain.ErrValidationField("message_type", "only text messages may be sent")
		}
	}

	var out *domain.ReservationMessage
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		res, err := s.ownedReservation(ctx, access, reservationID)
		if err != nil {
			return err
		}
		if in.ParentMessageID != nil {
			parent, err := s.messages.GetByID(ctx, *in.ParentMessageID)
			if err != nil {
				return err
			}
			if parent.ReservationID != reservationID || (parent.IsInternal && !unrestricted) {
				return domain.ErrValidationField("parent_message_id", "message %d is not in this thread", parent.ID)
			}
		}
		out, err = s.messages.Create(ctx, &domain.ReservationMessage{
			ReservationID:   reservationID,
			SenderID:        access.ActorID,
			Message:         body,
			MessageType:     kind,
			IsInternal:      in.IsInternal,
			ParentMessageID: in.ParentMessageID,
		})
		if err != nil {
			return err
		}
		if out.IsInternal || res.OwnerID == access.ActorID {
			return nil
		}
		subject := "New message on your reservation"
		resourceType := string(domain.ResourceReservation)
		_, err = s.notifications.Create(ctx, &domain.Notification{
			RecipientID:  res.OwnerID,
			Type:         domain.NotificationMessageReceived,
			Channel:      domain.ChannelInApp,
			Subject:      &subject,
			Message:      fmt.Sprintf("Reservation %d on %s: %s", res.ID, res.Date, preview(body)),
			ResourceType: &resourceType,
			ResourceID:   &res.ID,
		})
		if err != nil {
			return fmt.Errorf("notify owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "message sent",
		"reservation_id", reservationID, "message_id", out.ID, "internal", out.IsInternal)
	return out, nil
}

func (s *Service) ownedReservation(ctx context.Context, access security.Access, id int64) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(res.OwnerID); err != nil {
		return nil, err
	}
	return res, nil
}

func preview(s string) string {
	const n = 80
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
