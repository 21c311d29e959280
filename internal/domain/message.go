package domain

import (
	"encoding/json"
	"time"
)

// ReservationMessage is one entry in the conversation thread of a
// reservation. Internal messages are staff notes the owner never sees.
type ReservationMessage struct {
	ID              int64     `json:"id"`
	ReservationID   int64     `json:"reservation_id"`
	SenderID        int64     `json:"sender_user_id"`
	Message         string    `json:"message"`
	MessageType     string    `json:"message_type"`
	IsInternal      bool      `json:"is_internal"`
	ParentMessageID *int64    `json:"parent_message_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Notification is an in-app notice addressed to one actor.
type Notification struct {
	ID           int64      `json:"id"`
	RecipientID  int64      `json:"user_id"`
	Type         string     `json:"notification_type"`
	Channel      string     `json:"channel"`
	Subject      *string    `json:"subject,omitempty"`
	Message      string     `json:"message"`
	ResourceType *string    `json:"resource_type,omitempty"`
	ResourceID   *int64     `json:"resource_id,omitempty"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Notification types and channels.
const (
	NotificationMessageReceived = "message_received"
	ChannelInApp                = "in_app"
)

// NotificationFilter narrows a recipient's notification listing.
type NotificationFilter struct {
	RecipientID int64
	UnreadOnly  bool
	Limit       int
}

// MemberUpdate holds the owner-mutable fields of a member profile. Nil
// fields are left unchanged.
type MemberUpdate struct {
	Name                *string
	Relation            *string
	DietaryRestrictions json.RawMessage
}
