package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	internaldb "tablekeep/internal/db"
	"tablekeep/internal/db/repository"
	"tablekeep/internal/domain"
)

// Env is a migrated SQLite database with every repository wired to it.
type Env struct {
	DB            *sql.DB
	Tx            *repository.TxManager
	Actors        *repository.ActorRepo
	Policy        *repository.PolicyRepo
	Audit         *repository.AuditRepo
	Venues        *repository.VenueRepo
	Members       *repository.MemberRepo
	Reservations  *repository.ReservationRepo
	Attendees     *repository.AttendeeRepo
	Orders        *repository.OrderRepo
	Messages      *repository.MessageRepo
	Notifications *repository.NotificationRepo
}

// NewEnv opens a fresh database for t.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return &Env{
		DB:            writeDB,
		Tx:            repository.NewTxManager(writeDB),
		Actors:        repository.NewActorRepo(writeDB),
		Policy:        repository.NewPolicyRepo(writeDB),
		Audit:         repository.NewAuditRepo(writeDB),
		Venues:        repository.NewVenueRepo(writeDB),
		Members:       repository.NewMemberRepo(writeDB),
		Reservations:  repository.NewReservationRepo(writeDB),
		Attendees:     repository.NewAttendeeRepo(writeDB),
		Orders:        repository.NewOrderRepo(writeDB),
		Messages:      repository.NewMessageRepo(writeDB),
		Notifications: repository.NewNotificationRepo(writeDB),
	}
}

// Actor creates an active actor.
func (e *Env) Actor(t *testing.T, email string, role domain.Role, allowance int) *domain.Actor {
	t.Helper()
	a, err := e.Actors.Create(context.Background(), &domain.Actor{
		Email: email, Name: email, Role: role,
		MembershipStatus: domain.MembershipActive, GuestAllowance: allowance,
	})
	require.NoError(t, err)
	return a
}

// Room creates a dining room.
func (e *Env) Room(t *testing.T, name string, active bool) *domain.DiningRoom {
	t.Helper()
	r, err := e.Venues.CreateDiningRoom(context.Background(), &domain.DiningRoom{Name: name, LegalCapacity: 40, IsActive: active})
	require.NoError(t, err)
	return r
}

// Table creates a table with numbered seats.
func (e *Env) Table(t *testing.T, roomID int64, number string, seats int) *domain.Table {
	t.Helper()
	ctx := context.Background()
	tbl, err := e.Venues.CreateTable(ctx, &domain.Table{DiningRoomID: roomID, TableNumber: number, SeatCount: seats})
	require.NoError(t, err)
	require.NoError(t, e.Venues.CreateSeats(ctx, tbl.ID, seats))
	return tbl
}

// Member creates a member profile owned by ownerID.
func (e *Env) Member(t *testing.T, ownerID int64, name string) *domain.MemberProfile {
	t.Helper()
	m, err := e.Members.Create(context.Background(), &domain.MemberProfile{
		OwnerID: ownerID, Name: name, DietaryRestrictions: []byte(`["nut-free"]`),
	})
	require.NoError(t, err)
	return m
}

// As returns a context acting as a.
func As(a *domain.Actor) context.Context {
	return domain.WithActor(context.Background(), a.ContextActor())
}
