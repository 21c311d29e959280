// Package venue manages dining rooms, tables and seats.
package venue

import (
	"context"
	"strconv"
	"strings"

	"tablekeep/internal/domain"
	"tablekeep/internal/service/auditutil"
	"tablekeep/internal/service/security"
)

// Service provides venue catalog operations.
type Service struct {
	repo  domain.VenueRepository
	audit domain.AuditRepository
	tx    domain.TxManager
	eval  *security.Evaluator
}

// NewService creates a new venue Service.
func NewService(repo domain.VenueRepository, audit domain.AuditRepository, tx domain.TxManager, eval *security.Evaluator) *Service {
	return &Service{repo: repo, audit: audit, tx: tx, eval: eval}
}

// CreateDiningRoom adds a dining room.
func (s *Service) CreateDiningRoom(ctx context.Context, room *domain.DiningRoom) (*domain.DiningRoom, error) {
	if _, err := s.eval.Authorize(ctx, domain.ResourceDiningRoom, domain.ActionWrite); err != nil {
		return nil, err
	}
	room.Name = strings.TrimSpace(room.Name)
	if room.Name == "" {
		return nil, domain.ErrValidationField("name", "name is required")
	}
	if room.LegalCapacity < 0 {
		return nil, domain.ErrValidationField("legal_capacity", "must not be negative")
	}
	return s.repo.CreateDiningRoom(ctx, room)
}

// GetDiningRoom returns one dining room.
func (s *Service) GetDiningRoom(ctx context.Context, id int64) (*domain.DiningRoom, error) {
	if _, err := s.eval.Authorize(ctx, domain.ResourceDiningRoom, domain.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.GetDiningRoom(ctx, id)
}

// ListDiningRooms returns all dining rooms in display order.
func (s *Service) ListDiningRooms(ctx context.Context) ([]domain.DiningRoom, error) {
	if _, err := s.eval.Authorize(ctx, domain.ResourceDiningRoom, domain.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.ListDiningRooms(ctx)
}

// SetDiningRoomActive opens or closes a room for new reservations. Existing
// reservations are untouched.
func (s *Service) SetDiningRoomActive(ctx context.Context, id int64, active bool) (*domain.DiningRoom, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceDiningRoom, domain.ActionWrite)
	if err != nil {
		return nil, err
	}
	var after *domain.DiningRoom
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		before, err := s.repo.GetDiningRoom(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repo.SetDiningRoomActive(ctx, id, active); err != nil {
			return err
		}
		if after, err = s.repo.GetDiningRoom(ctx, id); err != nil {
			return err
		}
		return auditutil.Record(ctx, s.audit, auditutil.Event{
			ActorID:      access.ActorID,
			Action:       domain.AuditUpdateDiningRoom,
			ResourceType: domain.ResourceDiningRoom,
			ResourceID:   strconv.FormatInt(id, 10),
			Before:       before,
			After:        after,
		})
	})
	if err != nil {
		return nil, err
	}
	return after, nil
}

// CreateTable adds a table and numbers its seats 1..SeatCount.
func (s *Service) CreateTable(ctx context.Context, t *domain.Table) (*domain.Table, error) {
	if _, err := s.eval.Authorize(ctx, domain.ResourceTable, domain.ActionWrite); err != nil {
		return nil, err
	}
	t.TableNumber = strings.TrimSpace(t.TableNumber)
	if t.TableNumber == "" {
		return nil, domain.ErrValidationField("table_number", "table_number is required")
	}
	if t.SeatCount <= 0 {
		return nil, domain.ErrValidationField("seat_count", "seat_count must be positive")
	}

	var created *domain.Table
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetDiningRoom(ctx, t.DiningRoomID); err != nil {
			return err
		}
		var err error
		if created, err = s.repo.CreateTable(ctx, t); err != nil {
			return err
		}
		return s.repo.CreateSeats(ctx, created.ID, created.SeatCount)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetTable returns one table.
func (s *Service) GetTable(ctx context.Context, id int64) (*domain.Table, error) {
	if _, err := s.eval.Authorize(ctx, domain.ResourceTable, domain.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.GetTable(ctx, id)
}

// ListTables returns the tables of a dining room.
func (s *Service) ListTables(ctx context.Context, diningRoomID int64) ([]domain.Table, error) {
	if _, err := s.eval.Authorize(ctx, domain.ResourceTable, domain.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.ListTables(ctx, diningRoomID)
}

// ListSeats returns the seats of a table.
func (s *Service) ListSeats(ctx context.Context, tableID int64) ([]domain.Seat, error) {
	if _, err := s.eval.Authorize(ctx, domain.ResourceTable, domain.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.ListSeats(ctx, tableID)
}
