package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	internaldb "tablekeep/internal/db"
	"tablekeep/internal/domain"
)

type fixture struct {
	db     *sql.DB
	ctx    context.Context
	owner  *domain.Actor
	room   *domain.DiningRoom
	table  *domain.Table
	actors *ActorRepo
	venues *VenueRepo
	resv   *ReservationRepo
	atts   *AttendeeRepo
	orders *OrderRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	ctx := context.Background()

	f := &fixture{
		db:     writeDB,
		ctx:    ctx,
		actors: NewActorRepo(writeDB),
		venues: NewVenueRepo(writeDB),
		resv:   NewReservationRepo(writeDB),
		atts:   NewAttendeeRepo(writeDB),
		orders: NewOrderRepo(writeDB),
	}

	var err error
	f.owner, err = f.actors.Create(ctx, &domain.Actor{
		Email: "owner@example.com", Name: "Owner",
		Role: domain.RoleMember, MembershipStatus: domain.MembershipActive, GuestAllowance: 4,
	})
	require.NoError(t, err)

	f.room, err = f.venues.CreateDiningRoom(ctx, &domain.DiningRoom{Name: "Library", LegalCapacity: 40, IsActive: true})
	require.NoError(t, err)

	f.table = f.addTable(t, "T1", 4)
	return f
}

func (f *fixture) addTable(t *testing.T, number string, seats int) *domain.Table {
	t.Helper()
	tbl, err := f.venues.CreateTable(f.ctx, &domain.Table{DiningRoomID: f.room.ID, TableNumber: number, SeatCount: seats})
	require.NoError(t, err)
	require.NoError(t, f.venues.CreateSeats(f.ctx, tbl.ID, seats))
	return tbl
}

func (f *fixture) reservation(tableID int64, date, meal string) *domain.Reservation {
	return &domain.Reservation{
		OwnerID:      f.owner.ID,
		DiningRoomID: f.room.ID,
		TableID:      tableID,
		Date:         date,
		MealType:     meal,
		StartTime:    "18:00",
		EndTime:      "20:00",
		CreatedBy:    &f.owner.ID,
	}
}

func (f *fixture) guest(t *testing.T, reservationID int64, name string) *domain.Attendee {
	t.Helper()
	a, err := f.atts.Create(f.ctx, &domain.Attendee{
		ReservationID: reservationID, Name: name, Type: domain.AttendeeGuest, CreatedBy: &f.owner.ID,
	})
	require.NoError(t, err)
	return a
}
