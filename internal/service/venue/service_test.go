package venue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablekeep/internal/domain"
	"tablekeep/internal/service/security"
	"tablekeep/internal/testutil"
)

func setupService(t *testing.T) (*Service, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t)
	store := security.NewPolicyStore(env.Policy, env.Audit, env.Tx, security.NewPolicyCache(), nil, nil, nil)
	return NewService(env.Venues, env.Audit, env.Tx, security.NewEvaluator(store, nil, nil)), env
}

func TestService_CreateTableGeneratesSeats(t *testing.T) {
	svc, env := setupService(t)
	staff := env.Actor(t, "staff@example.com", domain.RoleStaff, 0)
	ctx := testutil.As(staff)

	room, err := svc.CreateDiningRoom(ctx, &domain.DiningRoom{Name: "Library", LegalCapacity: 30, IsActive: true})
	require.NoError(t, err)

	tbl, err := svc.CreateTable(ctx, &domain.Table{DiningRoomID: room.ID, TableNumber: "7", SeatCount: 6})
	require.NoError(t, err)

	seats, err := svc.ListSeats(ctx, tbl.ID)
	require.NoError(t, err)
	require.Len(t, seats, 6)
	assert.Equal(t, 1, seats[0].SeatNumber)
	assert.Equal(t, 6, seats[5].SeatNumber)

	tables, err := svc.ListTables(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, tables, 1)

	_, err = svc.CreateTable(ctx, &domain.Table{DiningRoomID: room.ID, TableNumber: "7", SeatCount: 2})
	var cerr *domain.ConflictError
	require.ErrorAs(t, err, &cerr)

	_, err = svc.CreateTable(ctx, &domain.Table{DiningRoomID: room.ID, TableNumber: "8", SeatCount: 0})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "seat_count", verr.Field)

	_, err = svc.CreateTable(ctx, &domain.Table{DiningRoomID: 9999, TableNumber: "8", SeatCount: 2})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestService_MemberCannotWrite(t *testing.T) {
	svc, env := setupService(t)
	member := env.Actor(t, "m@example.com", domain.RoleMember, 4)

	_, err := svc.CreateDiningRoom(testutil.As(member), &domain.DiningRoom{Name: "Nope"})
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	room := env.Room(t, "Library", true)
	rooms, err := svc.ListDiningRooms(testutil.As(member))
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, room.ID, rooms[0].ID)
}

func TestService_SetDiningRoomActiveAudited(t *testing.T) {
	svc, env := setupService(t)
	staff := env.Actor(t, "staff@example.com", domain.RoleStaff, 0)
	room := env.Room(t, "Terrace", true)

	closed, err := svc.SetDiningRoomActive(testutil.As(staff), room.ID, false)
	require.NoError(t, err)
	assert.False(t, closed.IsActive)

	entries, _, err := env.Audit.List(context.Background(), domain.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditUpdateDiningRoom, entries[0].Action)
	assert.Contains(t, string(entries[0].Before), `"is_active":true`)
	assert.Contains(t, string(entries[0].After), `"is_active":false`)
}
