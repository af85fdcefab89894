package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/abihavaraj/animo-sub001/internal/models"
	"github.com/abihavaraj/animo-sub001/internal/repository"
	"gorm.io/gorm"
)

type ScheduleService interface {
	CheckConflict(ctx context.Context, date, clock string, duration int, kind ResourceKind, resource string, excludeClassID uint) (*ConflictError, error)
	CreateClass(ctx context.Context, class *models.ClassSession) error
	RescheduleClass(ctx context.Context, classID uint, date, clock string, duration int, room *string) (*models.ClassSession, error)
	CancelClass(ctx context.Context, classID uint) error
	GetClass(ctx context.Context, classID uint) (*models.ClassSession, error)
	ListByDate(ctx context.Context, date string) ([]models.ClassSession, error)
}

type scheduleService struct {
	classRepo repository.ClassRepository
}

func NewScheduleService(classRepo repository.ClassRepository) ScheduleService {
	return &scheduleService{classRepo: classRepo}
}

// CheckConflict scans the day's active schedule for the given instructor or
// room and reports the first session whose window intersects the proposed
// one. Sessions without a room are exempt from room conflicts.
func (s *scheduleService) CheckConflict(ctx context.Context, date, clock string, duration int, kind ResourceKind, resource string, excludeClassID uint) (*ConflictError, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	if _, err := time.ParseInLocation(dateLayout, date, time.Local); err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, date)
	}
	startMin, err := clockToMinutes(clock)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	match, err := resourceMatcher(kind, resource)
	if err != nil {
		return nil, err
	}

	sessions, err := s.classRepo.FindActiveByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	endMin := startMin + duration
	for _, session := range sessions {
		if session.ID == excludeClassID || !match(&session) {
			continue
		}
		existingStart, err := clockToMinutes(session.Time)
		if err != nil {
			continue
		}
		existingEnd := existingStart + session.Duration
		if overlaps(startMin, endMin, existingStart, existingEnd) {
			return &ConflictError{
				Kind:     kind,
				Session:  session,
				StartMin: existingStart,
				EndMin:   existingEnd,
			}, nil
		}
	}
	return nil, nil
}

func resourceMatcher(kind ResourceKind, resource string) (func(*models.ClassSession) bool, error) {
	switch kind {
	case ResourceInstructor:
		id, err := strconv.ParseUint(resource, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid instructor id %q", ErrValidation, resource)
		}
		return func(c *models.ClassSession) bool {
			return c.InstructorID == uint(id)
		}, nil
	case ResourceRoom:
		return func(c *models.ClassSession) bool {
			return c.Room != nil && *c.Room == resource
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown resource kind %q", ErrValidation, kind)
	}
}

func (s *scheduleService) CreateClass(ctx context.Context, class *models.ClassSession) error {
	if class.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrValidation)
	}
	if err := s.checkResourcesFree(ctx, class, 0); err != nil {
		return err
	}

	class.Enrolled = 0
	class.Status = models.ClassActive
	return s.classRepo.Create(ctx, class)
}

func (s *scheduleService) RescheduleClass(ctx context.Context, classID uint, date, clock string, duration int, room *string) (*models.ClassSession, error) {
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if class.Status != models.ClassActive {
		return nil, ErrClassNotActive
	}

	candidate := *class
	candidate.Date = date
	candidate.Time = clock
	candidate.Duration = duration
	candidate.Room = room
	if err := s.checkResourcesFree(ctx, &candidate, classID); err != nil {
		return nil, err
	}

	class.Date = date
	class.Time = clock
	class.Duration = duration
	class.Room = room
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *scheduleService) checkResourcesFree(ctx context.Context, class *models.ClassSession, excludeClassID uint) error {
	conflict, err := s.CheckConflict(ctx, class.Date, class.Time, class.Duration,
		ResourceInstructor, strconv.FormatUint(uint64(class.InstructorID), 10), excludeClassID)
	if err != nil {
		return err
	}
	if conflict != nil {
		return conflict
	}

	if class.Room != nil {
		conflict, err = s.CheckConflict(ctx, class.Date, class.Time, class.Duration,
			ResourceRoom, *class.Room, excludeClassID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return conflict
		}
	}
	return nil
}

func (s *scheduleService) CancelClass(ctx context.Context, classID uint) error {
	if _, err := s.GetClass(ctx, classID); err != nil {
		return err
	}
	return s.classRepo.UpdateStatus(ctx, classID, models.ClassCancelled)
}

func (s *scheduleService) GetClass(ctx context.Context, classID uint) (*models.ClassSession, error) {
	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

func (s *scheduleService) ListByDate(ctx context.Context, date string) ([]models.ClassSession, error) {
	return s.classRepo.FindActiveByDate(ctx, date)
}
