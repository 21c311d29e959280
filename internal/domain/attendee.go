package domain

import (
	"encoding/json"
	"time"
)

// AttendeeType distinguishes linked member profiles from free-form guests.
type AttendeeType string

const (
	AttendeeMember AttendeeType = "member"
	AttendeeGuest  AttendeeType = "guest"
)

// MaxAttendeeNameLength bounds guest names.
const MaxAttendeeNameLength = 120

// Attendee is one person on a reservation's manifest. For member attendees
// Name and DietaryRestrictions are copied from the member profile.
type Attendee struct {
	ID                  int64           `json:"id"`
	ReservationID       int64           `json:"reservation_id"`
	MemberID            *int64          `json:"member_id,omitempty"`
	SeatID              *int64          `json:"seat_id,omitempty"`
	Name                string          `json:"name"`
	Type                AttendeeType    `json:"attendee_type"`
	DietaryRestrictions json.RawMessage `json:"dietary_restrictions,omitempty"`
	CreatedBy           *int64          `json:"created_by_user_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// AttendeeInput is one entry of a desired manifest. A nil ID means a new
// attendee; nil fields on an existing attendee are left unchanged.
type AttendeeInput struct {
	ID                  *int64          `json:"id,omitempty"`
	MemberID            *int64          `json:"member_id,omitempty"`
	SeatID              *int64          `json:"seat_id,omitempty"`
	Name                *string         `json:"name,omitempty"`
	DietaryRestrictions json.RawMessage `json:"dietary_restrictions,omitempty"`
}

// ManifestChange summarises a reconciliation.
type ManifestChange struct {
	Deleted  []int64 `json:"deleted"`
	Updated  []int64 `json:"updated"`
	Inserted []int64 `json:"inserted"`
}
