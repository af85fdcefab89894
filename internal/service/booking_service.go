package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/abihavaraj/animo-sub001/internal/models"
	"github.com/abihavaraj/animo-sub001/internal/notifier"
	"github.com/abihavaraj/animo-sub001/internal/repository"
	"gorm.io/gorm"
)

type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "staff"
)

// Actor identifies who performs an operation. Authentication happens in the
// auth layer; the services trust the supplied identity and role.
type Actor struct {
	UserID uint
	Role   Role
}

type BookingOutcome string

const (
	OutcomeConfirmed  BookingOutcome = "confirmed"
	OutcomeWaitlisted BookingOutcome = "waitlisted"
)

type BookingResult struct {
	Outcome  BookingOutcome
	Booking  *models.Booking
	Position int
}

type CancellationResult struct {
	CancelledAt      time.Time
	HoursBeforeClass float64
	WaitlistPromoted bool
	PromotedUserID   uint
}

type BookingService interface {
	BookClass(ctx context.Context, userID, classID uint) (*BookingResult, error)
	CancelBooking(ctx context.Context, bookingID uint, actor Actor) (*CancellationResult, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	ListBookings(ctx context.Context, classID uint) ([]models.Booking, error)
}

type bookingService struct {
	bookingRepo  repository.BookingRepository
	classRepo    repository.ClassRepository
	waitlistRepo repository.WaitlistRepository
	subRepo      repository.SubscriptionRepository
	notifier     notifier.Notifier
	leadTime     time.Duration
	now          func() time.Time
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	classRepo repository.ClassRepository,
	waitlistRepo repository.WaitlistRepository,
	subRepo repository.SubscriptionRepository,
	n notifier.Notifier,
	leadTime time.Duration,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		classRepo:    classRepo,
		waitlistRepo: waitlistRepo,
		subRepo:      subRepo,
		notifier:     n,
		leadTime:     leadTime,
		now:          time.Now,
	}
}

// BookClass runs the whole booking decision as one transaction: the class row
// lock serializes concurrent attempts per class, the conditional enrolled
// update hands out the last slot exactly once, and the booking row plus the
// credit decrement commit or roll back together. A full class falls through
// to the waitlist inside the same transaction.
func (s *bookingService) BookClass(ctx context.Context, userID, classID uint) (*BookingResult, error) {
	var result BookingResult
	var class *models.ClassSession

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		class, err = s.classRepo.FindByIDForUpdate(ctx, tx, classID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClassNotFound
			}
			return err
		}
		if class.Status != models.ClassActive {
			return ErrClassNotActive
		}

		start, err := class.StartTime()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		now := s.now()
		if !start.After(now) {
			return ErrPastClass
		}

		if err := s.checkNotAlreadyIn(ctx, tx, userID, classID); err != nil {
			return err
		}

		account, err := s.subRepo.FindBookableByUser(ctx, tx, userID, now.Format(dateLayout))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoSubscription
			}
			return err
		}
		if err := checkEntitlement(account, class); err != nil {
			return err
		}
		if account.RemainingClasses <= 0 {
			return ErrInsufficientCredit
		}

		reserved, err := s.classRepo.TryReserveSlot(ctx, tx, classID)
		if err != nil {
			return err
		}

		if !reserved {
			// Class full: queue the user instead. The class row lock also
			// serializes position assignment, so positions stay gapless.
			position, err := s.enqueue(ctx, tx, userID, classID)
			if err != nil {
				return err
			}
			result = BookingResult{Outcome: OutcomeWaitlisted, Position: position}
			return nil
		}

		ok, err := s.subRepo.ReserveCredit(ctx, tx, account.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientCredit
		}

		booking := &models.Booking{
			UserID:         userID,
			ClassID:        classID,
			SubscriptionID: &account.ID,
			Status:         models.BookingConfirmed,
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			return err
		}
		result = BookingResult{Outcome: OutcomeConfirmed, Booking: booking}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Outcome == OutcomeConfirmed {
		start, _ := class.StartTime()
		go s.notifier.ScheduleReminder(context.WithoutCancel(ctx), userID, classID,
			start.Format(time.RFC3339),
			fmt.Sprintf("Reminder: %s on %s at %s", class.Name, class.Date, class.Time))
	}

	return &result, nil
}

// CancelBooking reverses a booking and, when the class was full, promotes the
// head of its waitlist inside the same transaction. Promotion re-runs the
// booking effects for the promoted user: their credit is consumed, the freed
// slot is re-filled and the queue is renumbered.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID uint, actor Actor) (*CancellationResult, error) {
	var result CancellationResult
	var classID uint

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if actor.Role != RoleStaff && actor.UserID != booking.UserID {
			return ErrNotBookingOwner
		}

		class, err := s.classRepo.FindByIDForUpdate(ctx, tx, booking.ClassID)
		if err != nil {
			return err
		}
		classID = class.ID

		start, err := class.StartTime()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		now := s.now()
		untilStart := start.Sub(now)

		// Staff may cancel inside the lead-time window; clients may not.
		if actor.Role != RoleStaff && untilStart < s.leadTime {
			return ErrCancellationWindow
		}

		// Snapshot fullness before any mutation. Counted under the class lock,
		// so it still includes the booking being cancelled.
		confirmed, err := s.bookingRepo.ConfirmedCount(ctx, tx, class.ID)
		if err != nil {
			return err
		}
		wasFull := confirmed >= int64(class.Capacity)

		rows, err := s.bookingRepo.Delete(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrBookingNotFound
		}

		if err := s.classRepo.ReleaseSlot(ctx, tx, class.ID); err != nil {
			return err
		}
		if booking.SubscriptionID != nil {
			if err := s.subRepo.RefundCredit(ctx, tx, *booking.SubscriptionID); err != nil {
				return err
			}
		}

		result = CancellationResult{
			CancelledAt:      now,
			HoursBeforeClass: untilStart.Hours(),
		}

		if wasFull {
			promotedID, promoted, err := s.promoteHead(ctx, tx, class, now)
			if err != nil {
				return err
			}
			result.WaitlistPromoted = promoted
			result.PromotedUserID = promotedID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.WaitlistPromoted {
		go s.notifier.NotifyPromoted(context.WithoutCancel(ctx), result.PromotedUserID, classID,
			"A spot opened up and you have been moved off the waitlist")
	}

	return &result, nil
}

// promoteHead moves the first waitlisted user into the freed slot. If the
// head's subscription has lapsed the promotion is skipped and the entry stays
// put, blocking everyone behind it; the queue never advances past its head.
func (s *bookingService) promoteHead(ctx context.Context, tx *gorm.DB, class *models.ClassSession, now time.Time) (uint, bool, error) {
	head, err := s.waitlistRepo.FindHead(ctx, tx, class.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}

	account, err := s.subRepo.FindBookableByUser(ctx, tx, head.UserID, now.Format(dateLayout))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Booking] waitlist promotion skipped for user %d on class %d: no bookable subscription", head.UserID, class.ID)
			return 0, false, nil
		}
		return 0, false, err
	}
	if err := checkEntitlement(account, class); err != nil {
		log.Printf("[Booking] waitlist promotion skipped for user %d on class %d: %v", head.UserID, class.ID, err)
		return 0, false, nil
	}

	reserved, err := s.classRepo.TryReserveSlot(ctx, tx, class.ID)
	if err != nil {
		return 0, false, err
	}
	if !reserved {
		// Someone re-filled the slot between release and promotion; with the
		// class row locked this should not happen.
		return 0, false, nil
	}

	ok, err := s.subRepo.ReserveCredit(ctx, tx, account.ID)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		log.Printf("[Booking] waitlist promotion skipped for user %d on class %d: no remaining classes", head.UserID, class.ID)
		if err := s.classRepo.ReleaseSlot(ctx, tx, class.ID); err != nil {
			return 0, false, err
		}
		return 0, false, nil
	}

	booking := &models.Booking{
		UserID:         head.UserID,
		ClassID:        class.ID,
		SubscriptionID: &account.ID,
		Status:         models.BookingConfirmed,
	}
	if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
		return 0, false, err
	}

	if _, err := s.waitlistRepo.Delete(ctx, tx, head.ID); err != nil {
		return 0, false, err
	}
	if err := s.waitlistRepo.ShiftPositionsAfter(ctx, tx, class.ID, head.Position); err != nil {
		return 0, false, err
	}

	return head.UserID, true, nil
}

func (s *bookingService) checkNotAlreadyIn(ctx context.Context, tx *gorm.DB, userID, classID uint) error {
	_, err := s.bookingRepo.FindConfirmedByUserAndClass(ctx, tx, userID, classID)
	if err == nil {
		return ErrDuplicateBooking
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	_, err = s.waitlistRepo.FindByUserAndClass(ctx, tx, userID, classID)
	if err == nil {
		return ErrDuplicateBooking
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *bookingService) enqueue(ctx context.Context, tx *gorm.DB, userID, classID uint) (int, error) {
	max, err := s.waitlistRepo.MaxPosition(ctx, tx, classID)
	if err != nil {
		return 0, err
	}
	entry := &models.WaitlistEntry{
		UserID:   userID,
		ClassID:  classID,
		Position: max + 1,
	}
	if err := s.waitlistRepo.Create(ctx, tx, entry); err != nil {
		return 0, err
	}
	return entry.Position, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, classID uint) ([]models.Booking, error) {
	return s.bookingRepo.FindByClassID(ctx, classID)
}
