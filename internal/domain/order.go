package domain

import "time"

// Order collects line items for one reservation. Its existence blocks
// deletion of the reservation.
type Order struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OrderItem is a dish ordered for one attendee. It is removed with the attendee.
type OrderItem struct {
	ID         int64     `json:"id"`
	OrderID    int64     `json:"order_id"`
	AttendeeID int64     `json:"reservation_attendee_id"`
	MenuItemID int64     `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}

// MenuItem is a dish that can be ordered.
type MenuItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	IsAvailable bool   `json:"is_available"`
}
