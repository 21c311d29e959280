package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tablekeep/internal/db/repository"
	"tablekeep/internal/domain"
)

// SeedOptions controls the demo data written by Seed.
type SeedOptions struct {
	AdminEmail string
	AdminName  string
}

type seedTable struct {
	number string
	seats  int
}

var seedRooms = []struct {
	name     string
	capacity int
	tables   []seedTable
}{
	{name: "Library", capacity: 24, tables: []seedTable{{"1", 2}, {"2", 4}, {"3", 4}, {"4", 6}}},
	{name: "Garden Room", capacity: 40, tables: []seedTable{{"10", 4}, {"11", 8}}},
}

var seedMenu = []domain.MenuItem{
	{Name: "Consommé", Category: "starter", IsAvailable: true},
	{Name: "Dover sole", Category: "main", IsAvailable: true},
	{Name: "Beef Wellington", Category: "main", IsAvailable: true},
	{Name: "Treacle tart", Category: "dessert", IsAvailable: true},
}

// Seed creates an admin actor plus demo dining rooms, tables and menu items.
// Idempotent: rooms are only created when none exist, and an existing admin
// is returned unchanged.
func Seed(ctx context.Context, deps Deps, opts SeedOptions) (*domain.Actor, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.AdminEmail == "" {
		opts.AdminEmail = "admin@tablekeep.local"
	}
	if opts.AdminName == "" {
		opts.AdminName = "Administrator"
	}

	actors := repository.NewActorRepo(deps.WriteDB)
	venues := repository.NewVenueRepo(deps.WriteDB)
	orders := repository.NewOrderRepo(deps.WriteDB)
	tx := repository.NewTxManager(deps.WriteDB)

	var admin *domain.Actor
	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		admin, err = actors.GetByEmail(ctx, opts.AdminEmail)
		var nf *domain.NotFoundError
		switch {
		case errors.As(err, &nf):
			admin, err = actors.Create(ctx, &domain.Actor{
				Email:            opts.AdminEmail,
				Name:             opts.AdminName,
				Role:             domain.RoleAdmin,
				MembershipStatus: domain.MembershipActive,
				GuestAllowance:   domain.DefaultGuestAllowance,
			})
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			logger.Info("seeded admin", "actor_id", admin.ID, "email", admin.Email)
		case err != nil:
			return fmt.Errorf("lookup admin: %w", err)
		}

		rooms, err := venues.ListDiningRooms(ctx)
		if err != nil {
			return fmt.Errorf("list dining rooms: %w", err)
		}
		if len(rooms) > 0 {
			return nil
		}

		for i, sr := range seedRooms {
			room, err := venues.CreateDiningRoom(ctx, &domain.DiningRoom{
				Name: sr.name, LegalCapacity: sr.capacity, IsActive: true, DisplayOrder: i,
			})
			if err != nil {
				return fmt.Errorf("create room %s: %w", sr.name, err)
			}
			for _, st := range sr.tables {
				t, err := venues.CreateTable(ctx, &domain.Table{
					DiningRoomID: room.ID, TableNumber: st.number, SeatCount: st.seats,
				})
				if err != nil {
					return fmt.Errorf("create table %s/%s: %w", sr.name, st.number, err)
				}
				if err := venues.CreateSeats(ctx, t.ID, st.seats); err != nil {
					return fmt.Errorf("create seats for table %s/%s: %w", sr.name, st.number, err)
				}
			}
		}
		for i := range seedMenu {
			item := seedMenu[i]
			if _, err := orders.CreateMenuItem(ctx, &item); err != nil {
				return fmt.Errorf("create menu item %s: %w", item.Name, err)
			}
		}
		logger.Info("seeded venue", "rooms", len(seedRooms), "menu_items", len(seedMenu))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admin, nil
}
