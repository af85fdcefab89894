package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/abihavaraj/animo-sub001/internal/models"
	"github.com/abihavaraj/animo-sub001/internal/repository"
	"gorm.io/gorm"
)

type WaitlistService interface {
	Join(ctx context.Context, userID, classID uint) (*models.WaitlistEntry, error)
	Leave(ctx context.Context, entryID uint) error
	ListEntries(ctx context.Context, classID uint) ([]models.WaitlistEntry, error)
	PruneStale(ctx context.Context) (int, error)
}

type waitlistService struct {
	waitlistRepo repository.WaitlistRepository
	bookingRepo  repository.BookingRepository
	classRepo    repository.ClassRepository
	leadTime     time.Duration
	now          func() time.Time
}

func NewWaitlistService(
	waitlistRepo repository.WaitlistRepository,
	bookingRepo repository.BookingRepository,
	classRepo repository.ClassRepository,
	leadTime time.Duration,
) WaitlistService {
	return &waitlistService{
		waitlistRepo: waitlistRepo,
		bookingRepo:  bookingRepo,
		classRepo:    classRepo,
		leadTime:     leadTime,
		now:          time.Now,
	}
}

// Join queues a user on a full class. A class with open spots rejects the
// join: booking directly is the only way in, so nobody can park a queue spot
// around available capacity.
func (s *waitlistService) Join(ctx context.Context, userID, classID uint) (*models.WaitlistEntry, error) {
	var entry *models.WaitlistEntry

	err := s.waitlistRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		class, err := s.classRepo.FindByIDForUpdate(ctx, tx, classID)
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
		if !start.After(s.now()) {
			return ErrPastClass
		}

		if class.Enrolled < class.Capacity {
			return ErrClassNotFull
		}

		_, err = s.bookingRepo.FindConfirmedByUserAndClass(ctx, tx, userID, classID)
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

		max, err := s.waitlistRepo.MaxPosition(ctx, tx, classID)
		if err != nil {
			return err
		}
		entry = &models.WaitlistEntry{
			UserID:   userID,
			ClassID:  classID,
			Position: max + 1,
		}
		return s.waitlistRepo.Create(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Leave removes an entry and renumbers everything behind it so positions stay
// contiguous. A second Leave for the same entry reports not-found and leaves
// the other positions untouched.
func (s *waitlistService) Leave(ctx context.Context, entryID uint) error {
	return s.waitlistRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The first read only resolves the class; its position may already be
		// stale by the time the lock is granted.
		entry, err := s.waitlistRepo.FindByID(ctx, tx, entryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWaitlistEntryNotFound
			}
			return err
		}
		classID := entry.ClassID

		// Lock the class row so renumbering serializes with bookings,
		// cancellations and other leaves on the same class.
		if _, err := s.classRepo.FindByIDForUpdate(ctx, tx, classID); err != nil {
			return err
		}

		// Re-read under the lock: a concurrent leave or promotion committed
		// before the lock was granted may have renumbered the queue, and the
		// shift below must use the current position.
		entry, err = s.waitlistRepo.FindByID(ctx, tx, entryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWaitlistEntryNotFound
			}
			return err
		}

		rows, err := s.waitlistRepo.Delete(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrWaitlistEntryNotFound
		}
		return s.waitlistRepo.ShiftPositionsAfter(ctx, tx, classID, entry.Position)
	})
}

func (s *waitlistService) ListEntries(ctx context.Context, classID uint) ([]models.WaitlistEntry, error) {
	return s.waitlistRepo.FindByClassID(ctx, classID)
}

// PruneStale evicts every waitlist entry of classes starting within the lead
// time window. A promotion that close to start would be unfair to the
// entrant, so the whole queue is dropped instead.
func (s *waitlistService) PruneStale(ctx context.Context) (int, error) {
	classIDs, err := s.waitlistRepo.ClassIDsWithEntries(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	pruned := 0
	for _, classID := range classIDs {
		class, err := s.classRepo.FindByID(ctx, classID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return pruned, err
		}
		start, err := class.StartTime()
		if err != nil {
			log.Printf("[Waitlist] skipping prune for class %d: %v", classID, err)
			continue
		}
		if start.Sub(now) >= s.leadTime {
			continue
		}

		err = s.waitlistRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if _, err := s.classRepo.FindByIDForUpdate(ctx, tx, classID); err != nil {
				return err
			}
			rows, err := s.waitlistRepo.DeleteByClassID(ctx, tx, classID)
			if err != nil {
				return err
			}
			pruned += int(rows)
			return nil
		})
		if err != nil {
			return pruned, err
		}
	}
	return pruned, nil
}
