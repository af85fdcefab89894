package service

import (
	"errors"
	"fmt"

	"github.com/abihavaraj/animo-sub001/internal/models"
)

var (
	ErrClassNotFound         = errors.New("class not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrWaitlistEntryNotFound = errors.New("waitlist entry not found")
	ErrPlanNotFound          = errors.New("subscription plan not found")
	ErrSubscriptionNotFound  = errors.New("subscription not found")

	ErrClassNotActive   = errors.New("class is not active")
	ErrPastClass        = errors.New("class has already started")
	ErrDuplicateBooking = errors.New("user already has an active booking or waitlist spot for this class")

	ErrNoSubscription     = errors.New("no active subscription")
	ErrInsufficientCredit = errors.New("subscription has no remaining classes")
	ErrCategoryMismatch   = errors.New("subscription category does not cover this class")
	ErrEquipmentMismatch  = errors.New("subscription equipment access does not cover this class")

	ErrClassNotFull       = errors.New("class still has open spots, book directly instead")
	ErrCancellationWindow = errors.New("bookings can only be cancelled more than 2 hours before class start")
	ErrNotBookingOwner    = errors.New("cannot cancel another user's booking")
	ErrSubscriptionState  = errors.New("subscription is not in a valid state for this operation")

	ErrValidation = errors.New("invalid input")
)

// ConflictError reports an instructor or room double-booking, carrying the
// conflicting session so callers can show which class is in the way.
type ConflictError struct {
	Kind     ResourceKind
	Session  models.ClassSession
	StartMin int
	EndMin   int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict with class %d (%s %s, %d min)",
		e.Kind, e.Session.ID, e.Session.Date, e.Session.Time, e.Session.Duration)
}
