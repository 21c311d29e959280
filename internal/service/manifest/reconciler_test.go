package manifest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablekeep/internal/domain"
	"tablekeep/internal/service/security"
	"tablekeep/internal/testutil"
)

type fixture struct {
	env   *testutil.Env
	rec   *Reconciler
	owner *domain.Actor
	room  *domain.DiningRoom
	table *domain.Table
	res   *domain.Reservation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := testutil.NewEnv(t)
	store := security.NewPolicyStore(env.Policy, env.Audit, env.Tx, security.NewPolicyCache(), nil, nil, nil)
	eval := security.NewEvaluator(store, nil, nil)

	f := &fixture{env: env}
	f.rec = NewReconciler(Deps{
		Reservations: env.Reservations,
		Attendees:    env.Attendees,
		Members:      env.Members,
		Venues:       env.Venues,
		Actors:       env.Actors,
		Audit:        env.Audit,
		Tx:           env.Tx,
		Evaluator:    eval,
	})
	f.owner = env.Actor(t, "owner@example.com", domain.RoleMember, 4)
	f.room = env.Room(t, "Library", true)
	f.table = env.Table(t, f.room.ID, "T1", 5)

	var err error
	f.res, err = env.Reservations.Create(context.Background(), &domain.Reservation{
		OwnerID: f.owner.ID, DiningRoomID: f.room.ID, TableID: f.table.ID,
		Date: "2026-02-15", MealType: "dinner", StartTime: "18:00", EndTime: "20:00",
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) guest(t *testing.T, name string) *domain.Attendee {
	t.Helper()
	a, err := f.env.Attendees.Create(context.Background(), &domain.Attendee{
		ReservationID: f.res.ID, Name: name, Type: domain.AttendeeGuest, CreatedBy: &f.owner.ID,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) names(t *testing.T) []string {
	t.Helper()
	list, err := f.env.Attendees.ListByReservation(context.Background(), f.res.ID)
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Name)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestSync_DeleteUpdateInsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a1 := f.guest(t, "Ada")
	a2 := f.guest(t, "Bo")
	a3 := f.guest(t, "Cy")

	order, err := f.env.Orders.Create(ctx, f.res.ID)
	require.NoError(t, err)
	dish, err := f.env.Orders.CreateMenuItem(ctx, &domain.MenuItem{Name: "Soup", IsAvailable: true})
	require.NoError(t, err)
	_, err = f.env.Orders.AddItem(ctx, &domain.OrderItem{OrderID: order.ID, AttendeeID: a2.ID, MenuItemID: dish.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.env.Orders.AddItem(ctx, &domain.OrderItem{OrderID: order.ID, AttendeeID: a1.ID, MenuItemID: dish.ID, Quantity: 2})
	require.NoError(t, err)

	got, change, err := f.rec.Sync(testutil.As(f.owner), f.res.ID, []domain.AttendeeInput{
		{ID: &a1.ID, Name: ptr("Ada Lovelace")},
		{Name: ptr("Dee")},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []int64{a2.ID, a3.ID}, change.Deleted)
	assert.Equal(t, []int64{a1.ID}, change.Updated)
	require.Len(t, change.Inserted, 1)
	assert.Equal(t, []string{"Ada Lovelace", "Dee"}, f.names(t))

	// Bo's line item went with Bo; Ada's survives.
	items, err := f.env.Orders.ListItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a1.ID, items[0].AttendeeID)

	res, err := f.env.Reservations.GetByID(ctx, f.res.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PartySize)

	entries, _, err := f.env.Audit.List(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditSyncManifest, entries[0].Action)
}

func TestSync_EmptyListClearsManifest(t *testing.T) {
	f := newFixture(t)
	f.guest(t, "Ada")
	f.guest(t, "Bo")

	got, change, err := f.rec.Sync(testutil.As(f.owner), f.res.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Len(t, change.Deleted, 2)
	assert.Empty(t, f.names(t))
}

func TestSync_CrossAccountMemberAbortsBatch(t *testing.T) {
	f := newFixture(t)
	a1 := f.guest(t, "Ada")
	f.guest(t, "Bo")
	stranger := f.env.Actor(t, "stranger@example.com", domain.RoleMember, 4)
	theirs := f.env.Member(t, stranger.ID, "Not Yours")

	_, _, err := f.rec.Sync(testutil.As(f.owner), f.res.ID, []domain.AttendeeInput{
		{ID: &a1.ID, Name: ptr("Changed")},
		{MemberID: &theirs.ID},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "attendees[1].member_id", verr.Field)

	// Nothing was applied: Bo was not deleted and Ada was not renamed.
	assert.Equal(t, []string{"Ada", "Bo"}, f.names(t))
}

func TestSync_AttendeeOfAnotherReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, err := f.env.Reservations.Create(ctx, &domain.Reservation{
		OwnerID: f.owner.ID, DiningRoomID: f.room.ID, TableID: f.table.ID,
		Date: "2026-02-16", MealType: "dinner", StartTime: "18:00", EndTime: "20:00",
	})
	require.NoError(t, err)
	foreign, err := f.env.Attendees.Create(ctx, &domain.Attendee{ReservationID: other.ID, Name: "Eve", Type: domain.AttendeeGuest})
	require.NoError(t, err)
	f.guest(t, "Ada")

	_, _, err = f.rec.Sync(testutil.As(f.owner), f.res.ID, []domain.AttendeeInput{{ID: &foreign.ID}})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "attendees[0].id", verr.Field)
	assert.Contains(t, verr.Message, "another reservation")
	assert.Equal(t, []string{"Ada"}, f.names(t))

	_, _, err = f.rec.Sync(testutil.As(f.owner), f.res.ID, []domain.AttendeeInput{{ID: ptr(int64(99999))}})
	require.ErrorAs(t, err, &verr)
}

func TestSync_DuplicateIDLastWins(t *testing.T) {
	f := newFixture(t)
	a1 := f.guest(t, "Ada")
	f.guest(t, "Bo")

	_, change, err := f.rec.Sync(testutil.As(f.owner), f.res.ID, []domain.AttendeeInput{
		{ID: &a1.ID, Name: ptr("First")},
		{ID: &a1.ID, Name: ptr("Second")},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{a1.ID}, change.Updated)
	assert.Equal(t, []string{"Second"}, f.names(t))
}

func TestSync_MemberIdentityWinsOverGuestName(t *testing.T) {
	f := newFixture(t)
	profile := f.env.Member(t, f.owner.ID, "Sam Owner")

	got, _, err := f.rec.Sync(testutil.As(f.owner), f.res.ID, []domain.AttendeeInput{
		{MemberID: &profile.ID, Name: ptr("Imposter")},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sam Owner", got[0].Name)
	assert.Equal(t, domain.AttendeeMember, got[0].Type)
	assert.JSONEq(t, `["nut-free"]`, string(got[0].DietaryRestrictions))

	// A later guest-style edit keeps the member link.
	got, _, err = f.rec.Sync(testutil.As(f.owner), f.res.ID, []domain.AttendeeInput{
		{ID: &got[0].ID, Name: ptr("Imposter")},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sam Owner", got[0].Name)
	require.NotNil(t, got[0].MemberID)
	assert.Equal(t, profile.ID, *got[0].MemberID)
}

func TestSync_CapacityAndAllowance(t *testing.T) {
	f := newFixture(t)
	in := make([]domain.AttendeeInput, 6)
	for i := range in {
		in[i] = domain.AttendeeInput{Name: ptr("Guest")}
	}

	_, _, err := f.rec.Sync(testutil.As(f.owner), f.res.ID, in)
	var cerr *domain.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "party_size", cerr.Field)
	assert.Empty(t, f.names(t))

	// Allowance 1 admits the member plus one guest.
	allowance := 1
	_, err = f.env.Actors.Update(context.Background(), f.owner.ID, domain.ActorUpdate{GuestAllowance: &allowance})
	require.NoError(t, err)
	_, _, err = f.rec.Sync(testutil.As(f.owner), f.res.ID, in[:3])
	require.ErrorAs(t, err, &cerr)
	_, _, err = f.rec.Sync(testutil.As(f.owner), f.res.ID, in[:2])
	require.NoError(t, err)
}

func TestSync_SeatValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seats, err := f.env.Venues.ListSeats(ctx, f.table.ID)
	require.NoError(t, err)
	otherTable := f.env.Table(t, f.room.ID, "T2", 2)
	otherSeats, err := f.env.Venues.ListSeats(ctx, otherTable.ID)
	require.NoError(t, err)

	got, _, err := f.rec.Sync(testutil.As(f.owner), f.res.ID, []domain.AttendeeInput{
		{Name: ptr("Ada"), SeatID: &seats[0].ID},
	})
	require.NoError(t, err)
	require.NotNil(t, got[0].SeatID)
	assert.Equal(t, seats[0].ID, *got[0].SeatID)

	_, _, err = f.rec.Sync(testutil.As(f.owner), f.res.ID, []domain.AttendeeInput{
		{Name: ptr("Bo"), SeatID: &otherSeats[0].ID},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "attendees[0].seat_id", verr.Field)
}

func TestSync_Forbidden(t *testing.T) {
	f := newFixture(t)
	f.guest(t, "Ada")
	intruder := f.env.Actor(t, "intruder@example.com", domain.RoleMember, 4)

	_, _, err := f.rec.Sync(testutil.As(intruder), f.res.ID, []domain.AttendeeInput{})
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, []string{"Ada"}, f.names(t))

	staff := f.env.Actor(t, "staff@example.com", domain.RoleStaff, 0)
	_, _, err = f.rec.Sync(testutil.As(staff), f.res.ID, []domain.AttendeeInput{})
	require.NoError(t, err)
}

func TestSync_GuestNameRequired(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.rec.Sync(testutil.As(f.owner), f.res.ID, []domain.AttendeeInput{{Name: ptr("  ")}})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "attendees[0].name", verr.Field)
}

func TestAttendeeOperations(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As(f.owner)

	added, err := f.rec.Add(ctx, f.res.ID, domain.AttendeeInput{Name: ptr("Ada")})
	require.NoError(t, err)
	assert.Equal(t, domain.AttendeeGuest, added.Type)

	updated, err := f.rec.Update(ctx, added.ID, domain.AttendeeInput{Name: ptr("Ada L.")})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)

	list, err := f.rec.List(ctx, f.res.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.rec.Remove(ctx, added.ID))
	list, err = f.rec.List(ctx, f.res.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.rec.Add(ctx, f.res.ID, domain.AttendeeInput{ID: &added.ID, Name: ptr("X")})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
