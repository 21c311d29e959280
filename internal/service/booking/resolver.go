// Package booking commits reservations under the one-reservation-per-slot
// rule and drives their lifecycle.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"tablekeep/internal/domain"
	"tablekeep/internal/metrics"
	"tablekeep/internal/service/auditutil"
	"tablekeep/internal/service/manifest"
	"tablekeep/internal/service/security"
)

// maxAlternatives bounds the tables suggested on a slot conflict.
const maxAlternatives = 3

// Resolver validates and writes new or moved reservations. The unique index
// on the slot is the authoritative conflict signal; the pre-write checks
// only produce better error messages.
type Resolver struct {
	reservations domain.ReservationRepository
	attendees    domain.AttendeeRepository
	venues       domain.VenueRepository
	actors       domain.ActorRepository
	audit        domain.AuditRepository
	tx           domain.TxManager
	eval         *security.Evaluator
	manifest     *manifest.Reconciler
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// Deps groups the collaborators of the booking package.
type Deps struct {
	Reservations domain.ReservationRepository
	Attendees    domain.AttendeeRepository
	Venues       domain.VenueRepository
	Actors       domain.ActorRepository
	Orders       domain.OrderRepository
	Audit        domain.AuditRepository
	Tx           domain.TxManager
	Evaluator    *security.Evaluator
	Manifest     *manifest.Reconciler
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
}

// NewResolver creates a new Resolver.
func NewResolver(d Deps) *Resolver {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		reservations: d.Reservations,
		attendees:    d.Attendees,
		venues:       d.Venues,
		actors:       d.Actors,
		audit:        d.Audit,
		tx:           d.Tx,
		eval:         d.Evaluator,
		manifest:     d.Manifest,
		logger:       logger.With("component", "booking"),
		metrics:      d.Metrics,
	}
}

// Create books a table. A zero OwnerID books for the caller. Initial
// attendees, when given, are written in the same transaction.
func (r *Resolver) Create(ctx context.Context, req domain.BookingRequest) (*domain.Reservation, error) {
	access, err := r.eval.Authorize(ctx, domain.ResourceReservation, domain.ActionWrite)
	if err != nil {
		return nil, err
	}
	if req.OwnerID == 0 {
		req.OwnerID = access.ActorID
	}
	if err := access.Check(req.OwnerID); err != nil {
		return nil, err
	}
	if err := domain.ValidateSchedule(req.Date, req.MealType, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	count := req.RequestedCount()

	var created *domain.Reservation
	err = r.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := r.validate(ctx, req.OwnerID, req.DiningRoomID, req.TableID, count); err != nil {
			return err
		}
		res, err := r.reservations.Create(ctx, &domain.Reservation{
			OwnerID:      req.OwnerID,
			DiningRoomID: req.DiningRoomID,
			TableID:      req.TableID,
			Date:         req.Date,
			MealType:     req.MealType,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			Status:       domain.StatusPending,
			Notes:        req.Notes,
			CreatedBy:    &access.ActorID,
		})
		if err != nil {
			return err
		}
		if len(req.Attendees) > 0 {
			if _, _, err := r.manifest.Apply(ctx, res, nil, req.Attendees, access.ActorID); err != nil {
				return err
			}
			if res, err = r.reservations.GetByID(ctx, res.ID); err != nil {
				return err
			}
		}
		created = res
		return auditutil.Record(ctx, r.audit, auditutil.Event{
			ActorID:      access.ActorID,
			Action:       domain.AuditCreateReservation,
			ResourceType: domain.ResourceReservation,
			ResourceID:   strconv.FormatInt(res.ID, 10),
			After:        res,
		})
	})
	if err != nil {
		if domain.IsSlotConflict(err) {
			err = r.withAlternatives(ctx, err, req.DiningRoomID, req.Date, req.MealType, count)
		}
		r.metrics.Booking(outcome(err))
		return nil, err
	}

	r.metrics.Booking("created")
	r.logger.Info("reservation created",
		"reservation_id", created.ID, "table_id", created.TableID,
		"date", created.Date, "meal_type", created.MealType, "party_size", created.PartySize)
	return created, nil
}

// Move applies detail edits to an existing reservation. Placement changes go
// through the same checks as Create, using the live attendee count. Moving
// to another table releases every seat assignment on the manifest.
func (r *Resolver) Move(ctx context.Context, id int64, upd domain.ReservationUpdate) (*domain.Reservation, error) {
	access, err := r.eval.Authorize(ctx, domain.ResourceReservation, domain.ActionWrite)
	if err != nil {
		return nil, err
	}

	var target, updated *domain.Reservation
	err = r.tx.RunInTx(ctx, func(ctx context.Context) error {
		res, err := r.reservations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := access.Check(res.OwnerID); err != nil {
			return err
		}
		if res.Status == domain.StatusCancelled {
			return domain.ErrValidationField("status", "cancelled reservations cannot be edited")
		}
		before := *res
		upd.Apply(res)
		target = res
		if err := domain.ValidateSchedule(res.Date, res.MealType, res.StartTime, res.EndTime); err != nil {
			return err
		}
		if upd.MovesSlot() {
			if err := r.validate(ctx, res.OwnerID, res.DiningRoomID, res.TableID, res.PartySize); err != nil {
				return err
			}
		}
		if updated, err = r.reservations.Update(ctx, res); err != nil {
			return err
		}
		if res.TableID != before.TableID {
			released, err := r.attendees.ClearSeats(ctx, id)
			if err != nil {
				return fmt.Errorf("release seats: %w", err)
			}
			if released > 0 {
				r.logger.Info("seat assignments released",
					"reservation_id", id, "from_table_id", before.TableID, "to_table_id", res.TableID, "attendees", released)
			}
		}
		return auditutil.Record(ctx, r.audit, auditutil.Event{
			ActorID:      access.ActorID,
			Action:       domain.AuditUpdateReservation,
			ResourceType: domain.ResourceReservation,
			ResourceID:   strconv.FormatInt(id, 10),
			Before:       before,
			After:        updated,
		})
	})
	if err != nil {
		if domain.IsSlotConflict(err) && target != nil {
			err = r.withAlternatives(ctx, err, target.DiningRoomID, target.Date, target.MealType, max(target.PartySize, 1))
		}
		r.metrics.Booking(outcome(err))
		return nil, err
	}
	r.metrics.Booking("moved")
	return updated, nil
}

// validate runs the field-identified pre-write checks in order.
func (r *Resolver) validate(ctx context.Context, ownerID, roomID, tableID int64, count int) error {
	room, err := r.venues.GetDiningRoom(ctx, roomID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return domain.ErrNotFoundField("dining_room_id", "dining room %d not found", roomID)
		}
		return fmt.Errorf("lookup dining room: %w", err)
	}
	if !room.IsActive {
		return domain.ErrConflictField("dining_room_id", "dining room %s is not accepting reservations", room.Name)
	}

	table, err := r.venues.GetTable(ctx, tableID)
	if err != nil {
		var nf *domain.NotFoundError
		if !errors.As(err, &nf) {
			return fmt.Errorf("lookup table: %w", err)
		}
		return domain.ErrValidationField("table_id", "table %d not found", tableID)
	}
	if table.DiningRoomID != room.ID {
		return domain.ErrValidationField("table_id", "table %s is not in dining room %s", table.TableNumber, room.Name)
	}

	if count > table.SeatCount {
		return domain.ErrConflictField("party_size", "party of %d exceeds the %d seats at table %s", count, table.SeatCount, table.TableNumber)
	}

	owner, err := r.actors.GetByID(ctx, ownerID)
	if err != nil {
		return err
	}
	if owner.Role == domain.RoleMember && count > owner.GuestAllowance+1 {
		return domain.ErrConflictField("party_size", "party of %d exceeds the guest allowance of %d", count, owner.GuestAllowance)
	}
	return nil
}

// withAlternatives attaches suggested tables to a slot conflict. It runs
// after the failed transaction has rolled back; lookup failures are logged
// and leave the conflict without suggestions.
func (r *Resolver) withAlternatives(ctx context.Context, err error, roomID int64, date, meal string, count int) error {
	var cerr *domain.ConflictError
	if !errors.As(err, &cerr) {
		return err
	}
	alts, lerr := r.reservations.FindAvailableTables(ctx, roomID, date, meal, count, maxAlternatives)
	if lerr != nil {
		r.logger.Warn("alternative table lookup failed", "dining_room_id", roomID, "error", lerr)
		return cerr
	}
	out := *cerr
	out.Alternatives = alts
	return &out
}

func outcome(err error) string {
	var (
		cerr *domain.ConflictError
		verr *domain.ValidationError
		nerr *domain.NotFoundError
		aerr *domain.AccessDeniedError
	)
	switch {
	case domain.IsSlotConflict(err):
		return "slot_conflict"
	case errors.As(err, &cerr):
		return "capacity_conflict"
	case errors.As(err, &verr), errors.As(err, &nerr):
		return "invalid"
	case errors.As(err, &aerr):
		return "forbidden"
	default:
		return "error"
	}
}
