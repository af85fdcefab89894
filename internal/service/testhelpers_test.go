package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abihavaraj/animo-sub001/internal/models"
	"github.com/abihavaraj/animo-sub001/internal/notifier"
	"github.com/abihavaraj/animo-sub001/internal/repository"
	"github.com/abihavaraj/animo-sub001/pkg/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testDBCounter atomic.Int64

// newTestDB opens a fresh shared in-memory SQLite database per test so state
// never bleeds between tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	return database.NewSQLiteDB(dsn)
}

type testEnv struct {
	db          *gorm.DB
	bookingSvc  *bookingService
	waitlistSvc *waitlistService
	scheduleSvc ScheduleService
	subSvc      *subscriptionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	classRepo := repository.NewClassRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	return &testEnv{
		db:          db,
		bookingSvc:  NewBookingService(bookingRepo, classRepo, waitlistRepo, subRepo, notifier.Nop{}, 2*time.Hour).(*bookingService),
		waitlistSvc: NewWaitlistService(waitlistRepo, bookingRepo, classRepo, 2*time.Hour).(*waitlistService),
		scheduleSvc: NewScheduleService(classRepo),
		subSvc:      NewSubscriptionService(subRepo).(*subscriptionService),
	}
}

func strPtr(s string) *string { return &s }

// seedClass creates an active group mat class starting at the given instant.
func (env *testEnv) seedClass(t *testing.T, start time.Time, capacity int) *models.ClassSession {
	t.Helper()
	class := &models.ClassSession{
		Name:          "Morning Flow",
		Date:          start.Format("2006-01-02"),
		Time:          start.Format("15:04"),
		Duration:      60,
		Capacity:      capacity,
		Room:          strPtr("Studio A"),
		InstructorID:  1,
		EquipmentType: models.EquipmentMat,
		Category:      models.CategoryGroup,
		Status:        models.ClassActive,
	}
	require.NoError(t, env.db.Create(class).Error)
	return class
}

// seedAccount creates an active mat/group subscription with the given credits.
func (env *testEnv) seedAccount(t *testing.T, userID uint, remaining int) *models.SubscriptionAccount {
	t.Helper()
	now := time.Now()
	account := &models.SubscriptionAccount{
		UserID:           userID,
		PlanID:           1,
		RemainingClasses: remaining,
		Status:           models.SubscriptionActive,
		StartDate:        now.AddDate(0, 0, -7).Format(dateLayout),
		EndDate:          now.AddDate(0, 1, 0).Format(dateLayout),
		EquipmentAccess:  models.EquipmentMat,
		Category:         models.CategoryGroup,
	}
	require.NoError(t, env.db.Create(account).Error)
	return account
}

func (env *testEnv) enrolled(t *testing.T, classID uint) int {
	t.Helper()
	var class models.ClassSession
	require.NoError(t, env.db.First(&class, classID).Error)
	return class.Enrolled
}

func (env *testEnv) remaining(t *testing.T, accountID uint) int {
	t.Helper()
	var account models.SubscriptionAccount
	require.NoError(t, env.db.First(&account, accountID).Error)
	return account.RemainingClasses
}

func (env *testEnv) confirmedCount(t *testing.T, classID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.db.Model(&models.Booking{}).
		Where("class_id = ? AND status = ?", classID, models.BookingConfirmed).
		Count(&count).Error)
	return count
}

// requireGaplessPositions asserts the waitlist invariant: positions for the
// class are exactly 1..N.
func (env *testEnv) requireGaplessPositions(t *testing.T, classID uint) {
	t.Helper()
	var positions []int
	require.NoError(t, env.db.Model(&models.WaitlistEntry{}).
		Where("class_id = ?", classID).
		Order("position ASC").
		Pluck("position", &positions).Error)
	for i, p := range positions {
		require.Equal(t, i+1, p, "waitlist positions must be gapless starting at 1")
	}
}

// requireEnrolledMatchesBookings asserts the capacity invariant: the enrolled
// counter mirrors the confirmed booking count.
func (env *testEnv) requireEnrolledMatchesBookings(t *testing.T, classID uint) {
	t.Helper()
	require.EqualValues(t, env.confirmedCount(t, classID), env.enrolled(t, classID))
}
