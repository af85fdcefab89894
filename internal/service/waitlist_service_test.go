package service

import (
	"context"
	"testing"
	"time"

	"github.com/abihavaraj/animo-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin_RejectsWhenNotFull(t *testing.T) {
	env := newTestEnv(t)
	class := env.seedClass(t, classStart(24*time.Hour), 8)

	_, err := env.waitlistSvc.Join(context.Background(), 1, class.ID)
	assert.ErrorIs(t, err, ErrClassNotFull)
}

func fillClass(t *testing.T, env *testEnv, class *models.ClassSession, userID uint) {
	t.Helper()
	env.seedAccount(t, userID, 5)
	result, err := env.bookingSvc.BookClass(context.Background(), userID, class.ID)
	require.NoError(t, err)
	require.Equal(t, OutcomeConfirmed, result.Outcome)
}

func TestJoin_AssignsSequentialPositions(t *testing.T) {
	env := newTestEnv(t)
	class := env.seedClass(t, classStart(24*time.Hour), 1)
	fillClass(t, env, class, 1)

	for i, userID := range []uint{2, 3, 4} {
		entry, err := env.waitlistSvc.Join(context.Background(), userID, class.ID)
		require.NoError(t, err)
		assert.Equal(t, i+1, entry.Position)
	}
	env.requireGaplessPositions(t, class.ID)
}

func TestJoin_RejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	class := env.seedClass(t, classStart(24*time.Hour), 1)
	fillClass(t, env, class, 1)

	// The confirmed user cannot also queue.
	_, err := env.waitlistSvc.Join(context.Background(), 1, class.ID)
	assert.ErrorIs(t, err, ErrDuplicateBooking)

	_, err = env.waitlistSvc.Join(context.Background(), 2, class.ID)
	require.NoError(t, err)
	_, err = env.waitlistSvc.Join(context.Background(), 2, class.ID)
	assert.ErrorIs(t, err, ErrDuplicateBooking)
}

func TestJoin_RejectsPastAndCancelledClasses(t *testing.T) {
	env := newTestEnv(t)

	past := env.seedClass(t, classStart(-1*time.Hour), 1)
	require.NoError(t, env.db.Model(past).Update("enrolled", 1).Error)
	_, err := env.waitlistSvc.Join(context.Background(), 1, past.ID)
	assert.ErrorIs(t, err, ErrPastClass)

	cancelled := env.seedClass(t, classStart(24*time.Hour), 1)
	require.NoError(t, env.db.Model(cancelled).Update("status", models.ClassCancelled).Error)
	_, err = env.waitlistSvc.Join(context.Background(), 1, cancelled.ID)
	assert.ErrorIs(t, err, ErrClassNotActive)

	_, err = env.waitlistSvc.Join(context.Background(), 1, 9999)
	assert.ErrorIs(t, err, ErrClassNotFound)
}

func TestLeave_RenumbersBehind(t *testing.T) {
	env := newTestEnv(t)
	class := env.seedClass(t, classStart(24*time.Hour), 1)
	fillClass(t, env, class, 1)

	var entries []*models.WaitlistEntry
	for _, userID := range []uint{2, 3, 4} {
		entry, err := env.waitlistSvc.Join(context.Background(), userID, class.ID)
		require.NoError(t, err)
		entries = append(entries, entry)
	}

	// Remove the middle entry; the tail shifts up.
	require.NoError(t, env.waitlistSvc.Leave(context.Background(), entries[1].ID))

	remaining, err := env.waitlistSvc.ListEntries(context.Background(), class.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, uint(2), remaining[0].UserID)
	assert.Equal(t, 1, remaining[0].Position)
	assert.Equal(t, uint(4), remaining[1].UserID)
	assert.Equal(t, 2, remaining[1].Position)
}

// Leaving twice reports not-found the second time and does not shift the
// remaining positions again.
func TestLeave_Idempotence(t *testing.T) {
	env := newTestEnv(t)
	class := env.seedClass(t, classStart(24*time.Hour), 1)
	fillClass(t, env, class, 1)

	first, err := env.waitlistSvc.Join(context.Background(), 2, class.ID)
	require.NoError(t, err)
	_, err = env.waitlistSvc.Join(context.Background(), 3, class.ID)
	require.NoError(t, err)

	require.NoError(t, env.waitlistSvc.Leave(context.Background(), first.ID))

	err = env.waitlistSvc.Leave(context.Background(), first.ID)
	assert.ErrorIs(t, err, ErrWaitlistEntryNotFound)

	remaining, err := env.waitlistSvc.ListEntries(context.Background(), class.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, 1, remaining[0].Position)
}

// Queues of classes starting within the lead time are dropped wholesale; a
// promotion that late would be unfair to the entrant.
func TestPruneStale(t *testing.T) {
	env := newTestEnv(t)

	soon := env.seedClass(t, classStart(90*time.Minute), 1)
	later := env.seedClass(t, classStart(24*time.Hour), 1)
	fillClass(t, env, soon, 1)
	fillClass(t, env, later, 2)

	_, err := env.waitlistSvc.Join(context.Background(), 3, soon.ID)
	require.NoError(t, err)
	_, err = env.waitlistSvc.Join(context.Background(), 4, soon.ID)
	require.NoError(t, err)
	_, err = env.waitlistSvc.Join(context.Background(), 5, later.ID)
	require.NoError(t, err)

	pruned, err := env.waitlistSvc.PruneStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, pruned)

	soonEntries, err := env.waitlistSvc.ListEntries(context.Background(), soon.ID)
	require.NoError(t, err)
	assert.Empty(t, soonEntries)

	laterEntries, err := env.waitlistSvc.ListEntries(context.Background(), later.ID)
	require.NoError(t, err)
	assert.Len(t, laterEntries, 1)
}
