package dto

import (
	"time"

	"github.com/abihavaraj/animo-sub001/internal/models"
	"github.com/abihavaraj/animo-sub001/internal/service"
)

type BookingResponse struct {
	ID             uint                 `json:"id"`
	UserID         uint                 `json:"user_id"`
	ClassID        uint                 `json:"class_id"`
	SubscriptionID *uint                `json:"subscription_id,omitempty"`
	Status         models.BookingStatus `json:"status"`
	CheckedIn      bool                 `json:"checked_in"`
	CreatedAt      time.Time            `json:"created_at"`
}

type BookClassResponse struct {
	Result   service.BookingOutcome `json:"result"`
	Booking  *BookingResponse       `json:"booking,omitempty"`
	Position int                    `json:"position,omitempty"`
}

type CancelBookingResponse struct {
	CancelledAt      time.Time `json:"cancelled_at"`
	HoursBeforeClass float64   `json:"hours_before_class"`
	WaitlistPromoted bool      `json:"waitlist_promoted"`
}

type WaitlistEntryResponse struct {
	ID       uint `json:"id"`
	UserID   uint `json:"user_id"`
	ClassID  uint `json:"class_id"`
	Position int  `json:"position"`
}

type ClassResponse struct {
	ID            uint                 `json:"id"`
	Name          string               `json:"name"`
	Date          string               `json:"date"`
	Time          string               `json:"time"`
	Duration      int                  `json:"duration"`
	Capacity      int                  `json:"capacity"`
	Enrolled      int                  `json:"enrolled"`
	Room          *string              `json:"room,omitempty"`
	InstructorID  uint                 `json:"instructor_id"`
	EquipmentType models.EquipmentType `json:"equipment_type"`
	Category      models.ClassCategory `json:"category"`
	Status        models.ClassStatus   `json:"status"`
}

type ConflictResponse struct {
	Conflict bool           `json:"conflict"`
	Kind     string         `json:"kind,omitempty"`
	Class    *ClassResponse `json:"class,omitempty"`
	Message  string         `json:"message,omitempty"`
}

type SubscriptionResponse struct {
	ID               uint                      `json:"id"`
	UserID           uint                      `json:"user_id"`
	PlanID           uint                      `json:"plan_id"`
	RemainingClasses int                       `json:"remaining_classes"`
	Status           models.SubscriptionStatus `json:"status"`
	StartDate        string                    `json:"start_date"`
	EndDate          string                    `json:"end_date"`
	EquipmentAccess  models.EquipmentType      `json:"equipment_access"`
	Category         models.ClassCategory      `json:"category"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:             b.ID,
		UserID:         b.UserID,
		ClassID:        b.ClassID,
		SubscriptionID: b.SubscriptionID,
		Status:         b.Status,
		CheckedIn:      b.CheckedIn,
		CreatedAt:      b.CreatedAt,
	}
}

func ToWaitlistEntryResponse(e *models.WaitlistEntry) WaitlistEntryResponse {
	return WaitlistEntryResponse{
		ID:       e.ID,
		UserID:   e.UserID,
		ClassID:  e.ClassID,
		Position: e.Position,
	}
}

func ToClassResponse(c *models.ClassSession) ClassResponse {
	return ClassResponse{
		ID:            c.ID,
		Name:          c.Name,
		Date:          c.Date,
		Time:          c.Time,
		Duration:      c.Duration,
		Capacity:      c.Capacity,
		Enrolled:      c.Enrolled,
		Room:          c.Room,
		InstructorID:  c.InstructorID,
		EquipmentType: c.EquipmentType,
		Category:      c.Category,
		Status:        c.Status,
	}
}

func ToSubscriptionResponse(a *models.SubscriptionAccount) SubscriptionResponse {
	return SubscriptionResponse{
		ID:               a.ID,
		UserID:           a.UserID,
		PlanID:           a.PlanID,
		RemainingClasses: a.RemainingClasses,
		Status:           a.Status,
		StartDate:        a.StartDate,
		EndDate:          a.EndDate,
		EquipmentAccess:  a.EquipmentAccess,
		Category:         a.Category,
	}
}
