package domain

import "time"

// DiningRoom groups tables. Inactive rooms accept no new reservations.
type DiningRoom struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	LegalCapacity int       `json:"legal_capacity"`
	IsActive      bool      `json:"is_active"`
	DisplayOrder  int       `json:"display_order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Table has a fixed seat count and belongs to one dining room.
type Table struct {
	ID           int64  `json:"id"`
	DiningRoomID int64  `json:"dining_room_id"`
	TableNumber  string `json:"table_number"`
	SeatCount    int    `json:"seat_count"`
}

// Seat is a numbered position at a table.
type Seat struct {
	ID         int64 `json:"id"`
	TableID    int64 `json:"table_id"`
	SeatNumber int   `json:"seat_number"`
}
