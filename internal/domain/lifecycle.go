package domain

import "time"

// Transition moves the reservation to status to, stamping the matching
// timestamp. Re-applying the current status changes nothing and returns
// false. Allowed moves:
//
//	pending   -> confirmed  (confirmed_at)
//	pending   -> fired      (fired_at)
//	confirmed -> fired      (fired_at)
//	any       -> cancelled  (cancelled_at, cancelled_by)
//
// A cancelled reservation cannot be revived and a fired one cannot go back.
func (r *Reservation) Transition(to ReservationStatus, actorID int64, now time.Time) (bool, error) {
	if _, err := ParseReservationStatus(string(to)); err != nil {
		return false, err
	}
	if r.Status == to {
		return false, nil
	}
	if !canTransition(r.Status, to) {
		return false, ErrValidationField("status", "cannot move reservation from %s to %s", r.Status, to)
	}

	now = now.UTC()
	switch to {
	case StatusConfirmed:
		r.ConfirmedAt = &now
	case StatusFired:
		r.FiredAt = &now
	case StatusCancelled:
		r.CancelledAt = &now
		r.CancelledBy = &actorID
	}
	r.Status = to
	return true, nil
}

func canTransition(from, to ReservationStatus) bool {
	switch to {
	case StatusCancelled:
		return from != StatusCancelled
	case StatusConfirmed:
		return from == StatusPending
	case StatusFired:
		return from == StatusPending || from == StatusConfirmed
	default:
		return false
	}
}
