package booking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"tablekeep/internal/domain"
	"tablekeep/internal/service/auditutil"
	"tablekeep/internal/service/security"
)

// Service is the reservation API used by the transport layer.
type Service struct {
	*Resolver
	orders domain.OrderRepository
	now    func() time.Time
}

// NewService creates a Service and its Resolver.
func NewService(d Deps) *Service {
	return &Service{
		Resolver: NewResolver(d),
		orders:   d.Orders,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Get returns one reservation.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceReservation, domain.ActionRead)
	if err != nil {
		return nil, err
	}
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(res.OwnerID); err != nil {
		return nil, err
	}
	return res, nil
}

// List returns the reservations visible to the caller. Any OwnerID on the
// filter is replaced by the caller's scope.
func (s *Service) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int64, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceReservation, domain.ActionRead)
	if err != nil {
		return nil, 0, err
	}
	return listScoped(ctx, s.reservations, access, filter)
}

func listScoped(ctx context.Context, repo domain.ReservationRepository, access security.Access, filter domain.ReservationFilter) ([]domain.Reservation, int64, error) {
	owner, empty, err := access.OwnerFilter()
	if err != nil {
		return nil, 0, err
	}
	if empty {
		return []domain.Reservation{}, 0, nil
	}
	if owner != nil {
		filter.OwnerID = owner
	}
	return repo.List(ctx, filter)
}

// Update edits reservation details.
func (s *Service) Update(ctx context.Context, id int64, upd domain.ReservationUpdate) (*domain.Reservation, error) {
	return s.Move(ctx, id, upd)
}

// Transition moves a reservation to another status. Re-applying the current
// status is a no-op and is not audited.
func (s *Service) Transition(ctx context.Context, id int64, to domain.ReservationStatus) (*domain.Reservation, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceReservation, domain.ActionWrite)
	if err != nil {
		return nil, err
	}

	var result *domain.Reservation
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		res, err := s.reservations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := access.Check(res.OwnerID); err != nil {
			return err
		}
		before := *res
		changed, err := res.Transition(to, access.ActorID, s.now())
		if err != nil {
			return err
		}
		if !changed {
			result = res
			return nil
		}
		if result, err = s.reservations.Update(ctx, res); err != nil {
			return err
		}
		return auditutil.Record(ctx, s.audit, auditutil.Event{
			ActorID:      access.ActorID,
			Action:       domain.AuditTransitionReservation,
			ResourceType: domain.ResourceReservation,
			ResourceID:   strconv.FormatInt(id, 10),
			Before:       before,
			After:        result,
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Booking("transition_" + string(to))
	return result, nil
}

// Delete removes a reservation and its attendees. A reservation with an
// order cannot be deleted; cancel it instead.
func (s *Service) Delete(ctx context.Context, id int64) error {
	access, err := s.eval.Authorize(ctx, domain.ResourceReservation, domain.ActionDelete)
	if err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		res, err := s.reservations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := access.Check(res.OwnerID); err != nil {
			return err
		}
		hasOrder, err := s.orders.ExistsForReservation(ctx, id)
		if err != nil {
			return fmt.Errorf("check orders: %w", err)
		}
		if hasOrder {
			return domain.ErrConflictField("reservation_id", "reservation %d has an order and cannot be deleted", id)
		}
		if err := s.reservations.Delete(ctx, id); err != nil {
			return err
		}
		return auditutil.Record(ctx, s.audit, auditutil.Event{
			ActorID:      access.ActorID,
			Action:       domain.AuditDeleteReservation,
			ResourceType: domain.ResourceReservation,
			ResourceID:   strconv.FormatInt(id, 10),
			Before:       res,
		})
	})
}
