package manifest

import (
	"context"
	"fmt"

	"tablekeep/internal/domain"
)

// List returns the reservation's attendees.
func (r *Reconciler) List(ctx context.Context, reservationID int64) ([]domain.Attendee, error) {
	access, err := r.eval.Authorize(ctx, domain.ResourceReservationAttendee, domain.ActionRead)
	if err != nil {
		return nil, err
	}
	res, err := r.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(res.OwnerID); err != nil {
		return nil, err
	}
	out, err := r.attendees.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return nonNil(out), nil
}

// Add appends one attendee under the same rules as Sync.
func (r *Reconciler) Add(ctx context.Context, reservationID int64, in domain.AttendeeInput) (*domain.Attendee, error) {
	if in.ID != nil {
		return nil, domain.ErrValidationField("id", "new attendees must not carry an id")
	}
	access, err := r.eval.Authorize(ctx, domain.ResourceReservationAttendee, domain.ActionWrite)
	if err != nil {
		return nil, err
	}

	var created *domain.Attendee
	err = r.tx.RunInTx(ctx, func(ctx context.Context) error {
		res, err := r.editableReservation(ctx, access, reservationID)
		if err != nil {
			return err
		}
		a := &domain.Attendee{ReservationID: res.ID, Type: domain.AttendeeGuest, CreatedBy: &access.ActorID}
		if err := r.applyInput(ctx, res, a, in, "attendee"); err != nil {
			return err
		}
		n, err := r.attendees.CountByReservation(ctx, res.ID)
		if err != nil {
			return fmt.Errorf("count attendees: %w", err)
		}
		if err := r.checkCapacity(ctx, res, n+1); err != nil {
			return err
		}
		created, err = r.attendees.Create(ctx, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies field-level changes to one attendee.
func (r *Reconciler) Update(ctx context.Context, attendeeID int64, in domain.AttendeeInput) (*domain.Attendee, error) {
	access, err := r.eval.Authorize(ctx, domain.ResourceReservationAttendee, domain.ActionWrite)
	if err != nil {
		return nil, err
	}

	var updated *domain.Attendee
	err = r.tx.RunInTx(ctx, func(ctx context.Context) error {
		a, err := r.attendees.GetByID(ctx, attendeeID)
		if err != nil {
			return err
		}
		res, err := r.editableReservation(ctx, access, a.ReservationID)
		if err != nil {
			return err
		}
		if err := r.applyInput(ctx, res, a, in, "attendee"); err != nil {
			return err
		}
		updated, err = r.attendees.Update(ctx, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove deletes one attendee and, by cascade, its order items.
func (r *Reconciler) Remove(ctx context.Context, attendeeID int64) error {
	access, err := r.eval.Authorize(ctx, domain.ResourceReservationAttendee, domain.ActionDelete)
	if err != nil {
		return err
	}
	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		a, err := r.attendees.GetByID(ctx, attendeeID)
		if err != nil {
			return err
		}
		if _, err := r.editableReservation(ctx, access, a.ReservationID); err != nil {
			return err
		}
		return r.attendees.Delete(ctx, attendeeID)
	})
}
