// Package ordering opens orders on reservations and records per-attendee
// line items. Pricing is out of scope.
package ordering

import (
	"context"
	"strings"

	"tablekeep/internal/domain"
	"tablekeep/internal/service/security"
)

// Service provides order operations.
type Service struct {
	orders       domain.OrderRepository
	reservations domain.ReservationRepository
	attendees    domain.AttendeeRepository
	eval         *security.Evaluator
}

// NewService creates a new ordering Service.
func NewService(orders domain.OrderRepository, reservations domain.ReservationRepository, attendees domain.AttendeeRepository, eval *security.Evaluator) *Service {
	return &Service{orders: orders, reservations: reservations, attendees: attendees, eval: eval}
}

// CreateMenuItem adds a dish.
func (s *Service) CreateMenuItem(ctx context.Context, m *domain.MenuItem) (*domain.MenuItem, error) {
	if _, err := s.eval.Authorize(ctx, domain.ResourceMenuItem, domain.ActionWrite); err != nil {
		return nil, err
	}
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return nil, domain.ErrValidationField("name", "name is required")
	}
	return s.orders.CreateMenuItem(ctx, m)
}

// Open starts the order of a reservation. Each reservation has at most one.
func (s *Service) Open(ctx context.Context, reservationID int64) (*domain.Order, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceOrder, domain.ActionWrite)
	if err != nil {
		return nil, err
	}
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(res.OwnerID); err != nil {
		return nil, err
	}
	if res.Status == domain.StatusCancelled {
		return nil, domain.ErrValidationField("status", "reservation %d is cancelled", reservationID)
	}
	return s.orders.Create(ctx, reservationID)
}

// AddItem orders quantity of a menu item for one attendee of the order's
// reservation.
func (s *Service) AddItem(ctx context.Context, orderID, attendeeID, menuItemID int64, quantity int) (*domain.OrderItem, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceOrderItem, domain.ActionWrite)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domain.ErrValidationField("quantity", "quantity must be positive")
	}
	order, err := s.ownedOrder(ctx, access, orderID)
	if err != nil {
		return nil, err
	}
	att, err := s.attendees.GetByID(ctx, attendeeID)
	if err != nil {
		return nil, err
	}
	if att.ReservationID != order.ReservationID {
		return nil, domain.ErrValidationField("reservation_attendee_id", "attendee %d is not on this reservation", attendeeID)
	}
	item, err := s.orders.GetMenuItem(ctx, menuItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsAvailable {
		return nil, domain.ErrValidationField("menu_item_id", "%s is not available", item.Name)
	}
	return s.orders.AddItem(ctx, &domain.OrderItem{
		OrderID: order.ID, AttendeeID: attendeeID, MenuItemID: menuItemID, Quantity: quantity,
	})
}

// ListItems returns the line items of an order.
func (s *Service) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceOrderItem, domain.ActionRead)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedOrder(ctx, access, orderID); err != nil {
		return nil, err
	}
	return s.orders.ListItems(ctx, orderID)
}

// ownedOrder loads the order and applies the scope to its reservation owner.
func (s *Service) ownedOrder(ctx context.Context, access security.Access, orderID int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	res, err := s.reservations.GetByID(ctx, order.ReservationID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(res.OwnerID); err != nil {
		return nil, err
	}
	return order, nil
}
