// Package manifest reconciles reservation guest lists and manages the member
// profiles they link to.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"tablekeep/internal/domain"
	"tablekeep/internal/metrics"
	"tablekeep/internal/service/auditutil"
	"tablekeep/internal/service/security"
)

// Reconciler syncs a desired attendee list against the persisted manifest.
// A whole batch is validated before anything is written.
type Reconciler struct {
	reservations domain.ReservationRepository
	attendees    domain.AttendeeRepository
	members      domain.MemberRepository
	venues       domain.VenueRepository
	actors       domain.ActorRepository
	audit        domain.AuditRepository
	tx           domain.TxManager
	eval         *security.Evaluator
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// Deps groups the Reconciler's collaborators.
type Deps struct {
	Reservations domain.ReservationRepository
	Attendees    domain.AttendeeRepository
	Members      domain.MemberRepository
	Venues       domain.VenueRepository
	Actors       domain.ActorRepository
	Audit        domain.AuditRepository
	Tx           domain.TxManager
	Evaluator    *security.Evaluator
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
}

// NewReconciler creates a new Reconciler.
func NewReconciler(d Deps) *Reconciler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		reservations: d.Reservations,
		attendees:    d.Attendees,
		members:      d.Members,
		venues:       d.Venues,
		actors:       d.Actors,
		audit:        d.Audit,
		tx:           d.Tx,
		eval:         d.Evaluator,
		logger:       logger.With("component", "manifest"),
		metrics:      d.Metrics,
	}
}

// plan is a validated set of mutations.
type plan struct {
	deletes []int64
	updates []*domain.Attendee
	inserts []*domain.Attendee
}

func (p *plan) count() int { return len(p.updates) + len(p.inserts) }

func (p *plan) change() domain.ManifestChange {
	c := domain.ManifestChange{Deleted: p.deletes, Updated: []int64{}, Inserted: []int64{}}
	if c.Deleted == nil {
		c.Deleted = []int64{}
	}
	for _, a := range p.updates {
		c.Updated = append(c.Updated, a.ID)
	}
	return c
}

// Sync makes the reservation's manifest equal to desired. Attendees missing
// from desired are removed together with their order items; entries with an
// id update that attendee; entries without an id are inserted. When an id
// appears more than once the entries are applied in list order, so the last
// one wins. Any invalid entry aborts the whole batch.
func (r *Reconciler) Sync(ctx context.Context, reservationID int64, desired []domain.AttendeeInput) ([]domain.Attendee, domain.ManifestChange, error) {
	access, err := r.eval.Authorize(ctx, domain.ResourceReservationAttendee, domain.ActionWrite)
	if err != nil {
		return nil, domain.ManifestChange{}, err
	}

	var (
		result []domain.Attendee
		change domain.ManifestChange
	)
	err = r.tx.RunInTx(ctx, func(ctx context.Context) error {
		res, err := r.editableReservation(ctx, access, reservationID)
		if err != nil {
			return err
		}
		before, err := r.attendees.ListByReservation(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("list attendees: %w", err)
		}
		result, change, err = r.Apply(ctx, res, before, desired, access.ActorID)
		if err != nil {
			return err
		}
		return auditutil.Record(ctx, r.audit, auditutil.Event{
			ActorID:      access.ActorID,
			Action:       domain.AuditSyncManifest,
			ResourceType: domain.ResourceReservation,
			ResourceID:   strconv.FormatInt(reservationID, 10),
			Before:       nonNil(before),
			After:        nonNil(result),
		})
	})
	if err != nil {
		r.metrics.Reconciliation(outcome(err), 0, 0, 0)
		return nil, domain.ManifestChange{}, err
	}

	r.metrics.Reconciliation("applied", len(change.Deleted), len(change.Updated), len(change.Inserted))
	r.logger.Info("manifest reconciled",
		"reservation_id", reservationID,
		"deleted", len(change.Deleted), "updated", len(change.Updated), "inserted", len(change.Inserted))
	return result, change, nil
}

// Apply plans and writes a reconciliation for res given its current
// attendees. It performs no authorization and must run inside the caller's
// transaction.
func (r *Reconciler) Apply(ctx context.Context, res *domain.Reservation, existing []domain.Attendee, desired []domain.AttendeeInput, actorID int64) ([]domain.Attendee, domain.ManifestChange, error) {
	p, err := r.plan(ctx, res, existing, desired, actorID)
	if err != nil {
		return nil, domain.ManifestChange{}, err
	}
	if err := r.checkCapacity(ctx, res, p.count()); err != nil {
		return nil, domain.ManifestChange{}, err
	}

	for _, id := range p.deletes {
		if err := r.attendees.Delete(ctx, id); err != nil {
			return nil, domain.ManifestChange{}, fmt.Errorf("delete attendee %d: %w", id, err)
		}
	}
	for _, a := range p.updates {
		if _, err := r.attendees.Update(ctx, a); err != nil {
			return nil, domain.ManifestChange{}, fmt.Errorf("update attendee %d: %w", a.ID, err)
		}
	}
	change := p.change()
	for _, a := range p.inserts {
		created, err := r.attendees.Create(ctx, a)
		if err != nil {
			return nil, domain.ManifestChange{}, fmt.Errorf("insert attendee: %w", err)
		}
		change.Inserted = append(change.Inserted, created.ID)
	}

	out, err := r.attendees.ListByReservation(ctx, res.ID)
	if err != nil {
		return nil, domain.ManifestChange{}, fmt.Errorf("list attendees: %w", err)
	}
	return nonNil(out), change, nil
}

func (r *Reconciler) plan(ctx context.Context, res *domain.Reservation, existing []domain.Attendee, desired []domain.AttendeeInput, actorID int64) (*plan, error) {
	current := make(map[int64]*domain.Attendee, len(existing))
	for i := range existing {
		a := existing[i]
		current[a.ID] = &a
	}

	p := &plan{}
	touched := make(map[int64]bool, len(desired))
	for i, in := range desired {
		field := fmt.Sprintf("attendees[%d]", i)
		if in.ID == nil {
			a := &domain.Attendee{ReservationID: res.ID, Type: domain.AttendeeGuest, CreatedBy: &actorID}
			if err := r.applyInput(ctx, res, a, in, field); err != nil {
				return nil, err
			}
			p.inserts = append(p.inserts, a)
			continue
		}

		a, ok := current[*in.ID]
		if !ok {
			return nil, r.unknownAttendee(ctx, res.ID, *in.ID, field)
		}
		if err := r.applyInput(ctx, res, a, in, field); err != nil {
			return nil, err
		}
		if !touched[a.ID] {
			touched[a.ID] = true
			p.updates = append(p.updates, a)
		}
	}

	for _, a := range existing {
		if !touched[a.ID] {
			p.deletes = append(p.deletes, a.ID)
		}
	}
	return p, nil
}

func (r *Reconciler) unknownAttendee(ctx context.Context, reservationID, id int64, field string) error {
	other, err := r.attendees.GetByID(ctx, id)
	if err == nil && other.ReservationID != reservationID {
		return domain.ErrValidationField(field+".id", "attendee %d belongs to another reservation", id)
	}
	var nf *domain.NotFoundError
	if err != nil && !errors.As(err, &nf) {
		return fmt.Errorf("lookup attendee %d: %w", id, err)
	}
	return domain.ErrValidationField(field+".id", "attendee %d not found on reservation %d", id, reservationID)
}

// applyInput merges one desired entry into a. A member link always wins over
// guest data: name and dietary restrictions come from the profile.
func (r *Reconciler) applyInput(ctx context.Context, res *domain.Reservation, a *domain.Attendee, in domain.AttendeeInput, field string) error {
	switch {
	case in.MemberID != nil:
		profile, err := r.members.GetByID(ctx, *in.MemberID)
		if err != nil {
			var nf *domain.NotFoundError
			if errors.As(err, &nf) {
				return domain.ErrValidationField(field+".member_id", "member profile %d not found", *in.MemberID)
			}
			return fmt.Errorf("lookup member %d: %w", *in.MemberID, err)
		}
		if profile.OwnerID != res.OwnerID {
			return domain.ErrValidationField(field+".member_id", "member profile %d does not belong to the reservation owner", *in.MemberID)
		}
		id := profile.ID
		a.MemberID = &id
		a.Type = domain.AttendeeMember
		a.Name = profile.Name
		a.DietaryRestrictions = profile.DietaryRestrictions
	case a.Type == domain.AttendeeMember:
		// Existing member link; guest fields are ignored.
	default:
		if in.Name != nil {
			a.Name = strings.TrimSpace(*in.Name)
		}
		if a.Name == "" {
			return domain.ErrValidationField(field+".name", "guest name is required")
		}
		if utf8.RuneCountInString(a.Name) > domain.MaxAttendeeNameLength {
			return domain.ErrValidationField(field+".name", "guest name exceeds %d characters", domain.MaxAttendeeNameLength)
		}
		if in.DietaryRestrictions != nil {
			if !json.Valid(in.DietaryRestrictions) {
				return domain.ErrValidationField(field+".dietary_restrictions", "dietary_restrictions must be valid JSON")
			}
			a.DietaryRestrictions = in.DietaryRestrictions
		}
		a.Type = domain.AttendeeGuest
		a.MemberID = nil
	}

	if in.SeatID != nil {
		seat, err := r.venues.GetSeat(ctx, *in.SeatID)
		if err != nil {
			var nf *domain.NotFoundError
			if errors.As(err, &nf) {
				return domain.ErrValidationField(field+".seat_id", "seat %d not found", *in.SeatID)
			}
			return fmt.Errorf("lookup seat %d: %w", *in.SeatID, err)
		}
		if seat.TableID != res.TableID {
			return domain.ErrValidationField(field+".seat_id", "seat %d is not at table %d", *in.SeatID, res.TableID)
		}
		id := seat.ID
		a.SeatID = &id
	}
	return nil
}

// checkCapacity enforces the table's seat count and, for member owners,
// the guest allowance plus the member themself.
func (r *Reconciler) checkCapacity(ctx context.Context, res *domain.Reservation, count int) error {
	table, err := r.venues.GetTable(ctx, res.TableID)
	if err != nil {
		return fmt.Errorf("lookup table %d: %w", res.TableID, err)
	}
	if count > table.SeatCount {
		return domain.ErrConflictField("party_size", "party of %d exceeds the %d seats at table %s", count, table.SeatCount, table.TableNumber)
	}
	owner, err := r.actors.GetByID(ctx, res.OwnerID)
	if err != nil {
		return fmt.Errorf("lookup owner %d: %w", res.OwnerID, err)
	}
	if owner.Role == domain.RoleMember && count > owner.GuestAllowance+1 {
		return domain.ErrConflictField("party_size", "party of %d exceeds the guest allowance of %d", count, owner.GuestAllowance)
	}
	return nil
}

// editableReservation loads a reservation the access may write to. Cancelled
// reservations have a frozen manifest.
func (r *Reconciler) editableReservation(ctx context.Context, access security.Access, id int64) (*domain.Reservation, error) {
	res, err := r.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(res.OwnerID); err != nil {
		return nil, err
	}
	if res.Status == domain.StatusCancelled {
		return nil, domain.ErrValidationField("status", "reservation %d is cancelled", id)
	}
	return res, nil
}

func outcome(err error) string {
	var (
		verr *domain.ValidationError
		cerr *domain.ConflictError
		aerr *domain.AccessDeniedError
	)
	switch {
	case errors.As(err, &verr):
		return "invalid"
	case errors.As(err, &cerr):
		return "conflict"
	case errors.As(err, &aerr):
		return "forbidden"
	default:
		return "error"
	}
}

func nonNil(a []domain.Attendee) []domain.Attendee {
	if a == nil {
		return []domain.Attendee{}
	}
	return a
}
