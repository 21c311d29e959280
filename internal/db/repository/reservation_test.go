package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablekeep/internal/domain"
)

func TestReservationRepo_CreateAndGet(t *testing.T) {
	f := newFixture(t)

	res, err := f.resv.Create(f.ctx, f.reservation(f.table.ID, "2026-02-15", "dinner"))
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, domain.StatusPending, res.Status)
	assert.Equal(t, "2026-02-15", res.Date)
	assert.Equal(t, 0, res.PartySize)
	assert.Nil(t, res.ConfirmedAt)

	f.guest(t, res.ID, "A")
	f.guest(t, res.ID, "B")

	got, err := f.resv.GetByID(f.ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.PartySize)
}

func TestReservationRepo_SlotConflict(t *testing.T) {
	f := newFixture(t)

	_, err := f.resv.Create(f.ctx, f.reservation(f.table.ID, "2026-02-15", "dinner"))
	require.NoError(t, err)

	_, err = f.resv.Create(f.ctx, f.reservation(f.table.ID, "2026-02-15", "dinner"))
	require.Error(t, err)
	assert.True(t, domain.IsSlotConflict(err))

	// A different meal on the same table and date is a different slot.
	_, err = f.resv.Create(f.ctx, f.reservation(f.table.ID, "2026-02-15", "lunch"))
	require.NoError(t, err)
}

func TestReservationRepo_CancelledFreesSlot(t *testing.T) {
	f := newFixture(t)

	res, err := f.resv.Create(f.ctx, f.reservation(f.table.ID, "2026-02-15", "dinner"))
	require.NoError(t, err)

	_, err = res.Transition(domain.StatusCancelled, f.owner.ID, time.Now())
	require.NoError(t, err)
	updated, err := f.resv.Update(f.ctx, res)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	require.NotNil(t, updated.CancelledAt)
	require.NotNil(t, updated.CancelledBy)

	_, err = f.resv.Create(f.ctx, f.reservation(f.table.ID, "2026-02-15", "dinner"))
	require.NoError(t, err)
}

func TestReservationRepo_UpdateIntoTakenSlot(t *testing.T) {
	f := newFixture(t)
	other := f.addTable(t, "T2", 4)

	_, err := f.resv.Create(f.ctx, f.reservation(f.table.ID, "2026-02-15", "dinner"))
	require.NoError(t, err)
	moving, err := f.resv.Create(f.ctx, f.reservation(other.ID, "2026-02-15", "dinner"))
	require.NoError(t, err)

	moving.TableID = f.table.ID
	_, err = f.resv.Update(f.ctx, moving)
	assert.True(t, domain.IsSlotConflict(err))
}

func TestReservationRepo_ListByOwner(t *testing.T) {
	f := newFixture(t)
	someone, err := f.actors.Create(f.ctx, &domain.Actor{
		Email: "y@example.com", Name: "Y", Role: domain.RoleMember, MembershipStatus: domain.MembershipActive,
	})
	require.NoError(t, err)

	_, err = f.resv.Create(f.ctx, f.reservation(f.table.ID, "2026-02-15", "dinner"))
	require.NoError(t, err)
	theirs := f.reservation(f.table.ID, "2026-02-16", "dinner")
	theirs.OwnerID = someone.ID
	_, err = f.resv.Create(f.ctx, theirs)
	require.NoError(t, err)

	all, total, err := f.resv.List(f.ctx, domain.ReservationFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	mine, total, err := f.resv.List(f.ctx, domain.ReservationFilter{OwnerID: &f.owner.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, mine, 1)
	assert.Equal(t, f.owner.ID, mine[0].OwnerID)
}

func TestReservationRepo_FindAvailableTables(t *testing.T) {
	f := newFixture(t)
	small := f.addTable(t, "T2", 2)
	big := f.addTable(t, "T3", 6)
	mid := f.addTable(t, "T4", 4)
	_ = small

	_, err := f.resv.Create(f.ctx, f.reservation(f.table.ID, "2026-02-15", "dinner"))
	require.NoError(t, err)

	alts, err := f.resv.FindAvailableTables(f.ctx, f.room.ID, "2026-02-15", "dinner", 3, 3)
	require.NoError(t, err)
	require.Len(t, alts, 2)
	assert.Equal(t, mid.ID, alts[0].TableID)
	assert.Equal(t, big.ID, alts[1].TableID)
}

func TestReservationRepo_DeleteBlockedByOrder(t *testing.T) {
	f := newFixture(t)

	res, err := f.resv.Create(f.ctx, f.reservation(f.table.ID, "2026-02-15", "dinner"))
	require.NoError(t, err)
	_, err = f.orders.Create(f.ctx, res.ID)
	require.NoError(t, err)

	err = f.resv.Delete(f.ctx, res.ID)
	var cerr *domain.ConflictError
	require.ErrorAs(t, err, &cerr)

	_, err = f.resv.GetByID(f.ctx, res.ID)
	require.NoError(t, err)
}

func TestReservationRepo_DeleteCascadesAttendees(t *testing.T) {
	f := newFixture(t)

	res, err := f.resv.Create(f.ctx, f.reservation(f.table.ID, "2026-02-15", "dinner"))
	require.NoError(t, err)
	a := f.guest(t, res.ID, "A")

	require.NoError(t, f.resv.Delete(f.ctx, res.ID))

	_, err = f.atts.GetByID(f.ctx, a.ID)
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestTxManager_RollbackOnError(t *testing.T) {
	f := newFixture(t)
	tm := NewTxManager(f.db)
	boom := errors.New("boom")

	err := tm.RunInTx(f.ctx, func(ctx context.Context) error {
		res, err := f.resv.Create(ctx, f.reservation(f.table.ID, "2026-02-15", "dinner"))
		if err != nil {
			return err
		}
		if _, err := f.atts.Create(ctx, &domain.Attendee{ReservationID: res.ID, Name: "A", Type: domain.AttendeeGuest}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, total, err := f.resv.List(f.ctx, domain.ReservationFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTxManager_CommitAndJoin(t *testing.T) {
	f := newFixture(t)
	tm := NewTxManager(f.db)

	err := tm.RunInTx(f.ctx, func(ctx context.Context) error {
		if _, err := f.resv.Create(ctx, f.reservation(f.table.ID, "2026-02-15", "dinner")); err != nil {
			return err
		}
		// A nested call joins the outer transaction.
		return tm.RunInTx(ctx, func(ctx context.Context) error {
			_, err := f.resv.Create(ctx, f.reservation(f.table.ID, "2026-02-15", "lunch"))
			return err
		})
	})
	require.NoError(t, err)

	_, total, err := f.resv.List(f.ctx, domain.ReservationFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestTxManager_RollbackOnPanic(t *testing.T) {
	f := newFixture(t)
	tm := NewTxManager(f.db)

	assert.Panics(t, func() {
		_ = tm.RunInTx(f.ctx, func(ctx context.Context) error {
			if _, err := f.resv.Create(ctx, f.reservation(f.table.ID, "2026-02-15", "dinner")); err != nil {
				return err
			}
			panic("halt")
		})
	})

	_, total, err := f.resv.List(f.ctx, domain.ReservationFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
