package domain

import "context"

// TxManager runs fn in one transaction carried by the context. Repositories
// called with that context join the transaction. Returning an error (or
// panicking) rolls everything back.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ActorRepository provides persistence for actors.
type ActorRepository interface {
	Create(ctx context.Context, a *Actor) (*Actor, error)
	GetByID(ctx context.Context, id int64) (*Actor, error)
	GetByEmail(ctx context.Context, email string) (*Actor, error)
	List(ctx context.Context, page PageRequest) ([]Actor, int64, error)
	Update(ctx context.Context, id int64, upd ActorUpdate) (*Actor, error)
}

// PolicyRepository persists the single versioned policy matrix record.
type PolicyRepository interface {
	// Get returns NotFoundError when no matrix has ever been saved.
	Get(ctx context.Context) (*PolicyRecord, error)
	Upsert(ctx context.Context, m PolicyMatrix, editorID int64) (*PolicyRecord, error)
}

// AuditRepository provides operations for audit log entries. Entries are
// insert-only.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
}

// VenueRepository provides persistence for dining rooms, tables and seats.
type VenueRepository interface {
	CreateDiningRoom(ctx context.Context, r *DiningRoom) (*DiningRoom, error)
	GetDiningRoom(ctx context.Context, id int64) (*DiningRoom, error)
	ListDiningRooms(ctx context.Context) ([]DiningRoom, error)
	SetDiningRoomActive(ctx context.Context, id int64, active bool) error
	CreateTable(ctx context.Context, t *Table) (*Table, error)
	GetTable(ctx context.Context, id int64) (*Table, error)
	ListTables(ctx context.Context, diningRoomID int64) ([]Table, error)
	CreateSeats(ctx context.Context, tableID int64, count int) error
	ListSeats(ctx context.Context, tableID int64) ([]Seat, error)
	GetSeat(ctx context.Context, id int64) (*Seat, error)
}

// MemberRepository provides persistence for member profiles.
type MemberRepository interface {
	Create(ctx context.Context, m *MemberProfile) (*MemberProfile, error)
	GetByID(ctx context.Context, id int64) (*MemberProfile, error)
	List(ctx context.Context, ownerID *int64) ([]MemberProfile, error)
	Update(ctx context.Context, id int64, upd MemberUpdate) (*MemberProfile, error)
	// Delete returns a ConflictError while a manifest still links the profile.
	Delete(ctx context.Context, id int64) error
}

// ReservationRepository provides persistence for reservations. Create and
// Update return a ConflictError when the slot is already held.
type ReservationRepository interface {
	Create(ctx context.Context, r *Reservation) (*Reservation, error)
	GetByID(ctx context.Context, id int64) (*Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]Reservation, int64, error)
	Update(ctx context.Context, r *Reservation) (*Reservation, error)
	Delete(ctx context.Context, id int64) error
	// FindAvailableTables lists tables in the room with at least minSeats
	// seats and no non-cancelled reservation for the date and meal.
	FindAvailableTables(ctx context.Context, diningRoomID int64, date, mealType string, minSeats, limit int) ([]TableAlternative, error)
}

// AttendeeRepository provides persistence for reservation attendees.
type AttendeeRepository interface {
	ListByReservation(ctx context.Context, reservationID int64) ([]Attendee, error)
	GetByID(ctx context.Context, id int64) (*Attendee, error)
	Create(ctx context.Context, a *Attendee) (*Attendee, error)
	Update(ctx context.Context, a *Attendee) (*Attendee, error)
	Delete(ctx context.Context, id int64) error
	// ClearSeats unassigns the seats of every attendee of the reservation
	// and returns how many attendees were affected.
	ClearSeats(ctx context.Context, reservationID int64) (int64, error)
	CountByReservation(ctx context.Context, reservationID int64) (int, error)
}

// OrderRepository provides persistence for orders, their items and the menu.
type OrderRepository interface {
	Create(ctx context.Context, reservationID int64) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	ExistsForReservation(ctx context.Context, reservationID int64) (bool, error)
	AddItem(ctx context.Context, item *OrderItem) (*OrderItem, error)
	ListItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	CreateMenuItem(ctx context.Context, m *MenuItem) (*MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (*MenuItem, error)
}

// MessageRepository provides persistence for reservation message threads.
type MessageRepository interface {
	Create(ctx context.Context, m *ReservationMessage) (*ReservationMessage, error)
	GetByID(ctx context.Context, id int64) (*ReservationMessage, error)
	// ListByReservation returns the thread oldest first, skipping internal
	// messages unless includeInternal is set.
	ListByReservation(ctx context.Context, reservationID int64, includeInternal bool) ([]ReservationMessage, error)
}

// NotificationRepository provides persistence for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	List(ctx context.Context, filter NotificationFilter) ([]Notification, error)
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
	MarkRead(ctx context.Context, id int64) (*Notification, error)
	// MarkAllRead returns how many notifications changed.
	MarkAllRead(ctx context.Context, recipientID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}
