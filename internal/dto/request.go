package dto

import "github.com/shopspring/decimal"

type CreateBookingRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

type JoinWaitlistRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

type CreateClassRequest struct {
	Name          string  `json:"name" validate:"required"`
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string  `json:"time" validate:"required,datetime=15:04"`
	Duration      int     `json:"duration" validate:"required,min=1"`
	Capacity      int     `json:"capacity" validate:"required,min=1"`
	Room          *string `json:"room,omitempty"`
	InstructorID  uint    `json:"instructor_id" validate:"required"`
	EquipmentType string  `json:"equipment_type" validate:"required,oneof=mat reformer"`
	Category      string  `json:"category" validate:"required,oneof=group personal"`
}

type RescheduleClassRequest struct {
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string  `json:"time" validate:"required,datetime=15:04"`
	Duration int     `json:"duration" validate:"required,min=1"`
	Room     *string `json:"room,omitempty"`
}

type ConflictCheckRequest struct {
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string `json:"time" validate:"required,datetime=15:04"`
	Duration       int    `json:"duration" validate:"required,min=1"`
	Kind           string `json:"kind" validate:"required,oneof=instructor room"`
	Resource       string `json:"resource" validate:"required"`
	ExcludeClassID uint   `json:"exclude_class_id,omitempty"`
}

type PurchaseSubscriptionRequest struct {
	UserID uint `json:"user_id" validate:"required"`
	PlanID uint `json:"plan_id" validate:"required"`
}

type ExtendSubscriptionRequest struct {
	Days int `json:"days" validate:"required,min=1"`
}

type CreatePlanRequest struct {
	Name            string          `json:"name" validate:"required"`
	ClassCount      int             `json:"class_count" validate:"required,min=1"`
	DurationDays    int             `json:"duration_days" validate:"required,min=1"`
	Price           decimal.Decimal `json:"price"`
	EquipmentAccess string          `json:"equipment_access" validate:"required,oneof=mat reformer both"`
	Category        string          `json:"category" validate:"required,oneof=group personal"`
}
