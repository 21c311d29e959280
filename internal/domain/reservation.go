package domain

import (
	"errors"
	"strings"
	"time"
)

// ReservationStatus is a reservation's lifecycle state.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusFired     ReservationStatus = "fired"
)

// ParseReservationStatus converts a string into a ReservationStatus.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch st := ReservationStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusFired:
		return st, nil
	default:
		return "", ErrValidationField("status", "unknown status %q", s)
	}
}

const (
	// DateLayout is the wire and storage format of reservation dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire and storage format of reservation times.
	TimeLayout = "15:04"
)

// Reservation books one table in one dining room for one meal.
// PartySize is derived from the live attendee collection and never stored.
type Reservation struct {
	ID           int64             `json:"id"`
	OwnerID      int64             `json:"user_id"`
	DiningRoomID int64             `json:"dining_room_id"`
	TableID      int64             `json:"table_id"`
	Date         string            `json:"date"`
	MealType     string            `json:"meal_type"`
	StartTime    string            `json:"start_time"`
	EndTime      string            `json:"end_time"`
	Status       ReservationStatus `json:"status"`
	Notes        *string           `json:"notes,omitempty"`
	CreatedBy    *int64            `json:"created_by_user_id,omitempty"`
	CancelledBy  *int64            `json:"cancelled_by_user_id,omitempty"`
	ConfirmedAt  *time.Time        `json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time        `json:"cancelled_at,omitempty"`
	FiredAt      *time.Time        `json:"fired_at,omitempty"`
	PartySize    int               `json:"party_size"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Slot is the (date, meal_type, table) triple that at most one
// non-cancelled reservation may hold.
type Slot struct {
	Date     string
	MealType string
	TableID  int64
}

// Slot returns the reservation's slot.
func (r Reservation) Slot() Slot {
	return Slot{Date: r.Date, MealType: r.MealType, TableID: r.TableID}
}

// BookingRequest is the input to reservation creation. When Attendees is
// non-empty the requested count is its length; otherwise AttendeeCount is
// used, defaulting to one.
type BookingRequest struct {
	OwnerID       int64
	DiningRoomID  int64
	TableID       int64
	Date          string
	MealType      string
	StartTime     string
	EndTime       string
	Notes         *string
	AttendeeCount int
	Attendees     []AttendeeInput
}

// RequestedCount returns the number of attendees the booking asks for.
func (b BookingRequest) RequestedCount() int {
	if len(b.Attendees) > 0 {
		return len(b.Attendees)
	}
	if b.AttendeeCount > 0 {
		return b.AttendeeCount
	}
	return 1
}

// ReservationUpdate holds editable reservation details. Nil fields are left
// unchanged. Status is changed only through lifecycle transitions.
type ReservationUpdate struct {
	DiningRoomID *int64
	TableID      *int64
	Date         *string
	MealType     *string
	StartTime    *string
	EndTime      *string
	Notes        *string
}

// Apply copies the non-nil fields onto r.
func (u ReservationUpdate) Apply(r *Reservation) {
	if u.DiningRoomID != nil {
		r.DiningRoomID = *u.DiningRoomID
	}
	if u.TableID != nil {
		r.TableID = *u.TableID
	}
	if u.Date != nil {
		r.Date = *u.Date
	}
	if u.MealType != nil {
		r.MealType = *u.MealType
	}
	if u.StartTime != nil {
		r.StartTime = *u.StartTime
	}
	if u.EndTime != nil {
		r.EndTime = *u.EndTime
	}
	if u.Notes != nil {
		r.Notes = u.Notes
	}
}

// MovesSlot reports whether the update touches placement or timing.
func (u ReservationUpdate) MovesSlot() bool {
	return u.DiningRoomID != nil || u.TableID != nil || u.Date != nil ||
		u.MealType != nil || u.StartTime != nil || u.EndTime != nil
}

// ValidateSchedule checks the date, meal type and time window formats.
func ValidateSchedule(date, mealType, start, end string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrValidationField("date", "date must be YYYY-MM-DD")
	}
	if strings.TrimSpace(mealType) == "" {
		return ErrValidationField("meal_type", "meal_type is required")
	}
	st, err := time.Parse(TimeLayout, start)
	if err != nil {
		return ErrValidationField("start_time", "start_time must be HH:MM")
	}
	et, err := time.Parse(TimeLayout, end)
	if err != nil {
		return ErrValidationField("end_time", "end_time must be HH:MM")
	}
	if !et.After(st) {
		return ErrValidationField("end_time", "end_time must be after start_time")
	}
	return nil
}

// ReservationFilter narrows reservation listings. A caller-supplied OwnerID
// is honoured only under `all` scope; under `own` it is replaced with the
// caller's id.
type ReservationFilter struct {
	OwnerID      *int64
	DiningRoomID *int64
	Date         string
	MealType     string
	Status       *ReservationStatus
	Page         PageRequest
}

// SlotField is the field reported on slot conflicts.
const SlotField = "table_id"

// ErrSlotTaken reports that a non-cancelled reservation already holds s.
func ErrSlotTaken(s Slot) *ConflictError {
	return ErrConflictField(SlotField, "table %d is already reserved for %s on %s", s.TableID, s.MealType, s.Date)
}

// IsSlotConflict reports whether err is a slot uniqueness conflict.
func IsSlotConflict(err error) bool {
	var cerr *ConflictError
	return errors.As(err, &cerr) && cerr.Field == SlotField
}
