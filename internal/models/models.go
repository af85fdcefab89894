package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ClassStatus string

const (
	ClassActive    ClassStatus = "active"
	ClassCancelled ClassStatus = "cancelled"
)

type ClassCategory string

const (
	CategoryGroup    ClassCategory = "group"
	CategoryPersonal ClassCategory = "personal"
)

type EquipmentType string

const (
	EquipmentMat      EquipmentType = "mat"
	EquipmentReformer EquipmentType = "reformer"
	EquipmentBoth     EquipmentType = "both"
)

// ClassSession is a single scheduled class. Date is "2006-01-02" and Time is
// "15:04", studio-local. Enrolled mirrors the count of confirmed bookings and
// is only written through the atomic reserve/release updates in the repository.
type ClassSession struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Name          string        `gorm:"not null" json:"name"`
	Date          string        `gorm:"type:varchar(10);not null;index" json:"date"`
	Time          string        `gorm:"type:varchar(5);not null" json:"time"`
	Duration      int           `gorm:"not null" json:"duration"`
	Capacity      int           `gorm:"not null" json:"capacity"`
	Enrolled      int           `gorm:"not null;default:0" json:"enrolled"`
	Room          *string       `json:"room,omitempty"`
	InstructorID  uint          `gorm:"not null;index" json:"instructor_id"`
	EquipmentType EquipmentType `gorm:"type:varchar(10);not null" json:"equipment_type"`
	Category      ClassCategory `gorm:"type:varchar(10);not null;default:'group'" json:"category"`
	Status        ClassStatus   `gorm:"type:varchar(10);not null;default:'active'" json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// StartTime combines Date and Time into a studio-local instant.
func (c *ClassSession) StartTime() (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", c.Date+" "+c.Time, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse class start %q %q: %w", c.Date, c.Time, err)
	}
	return t, nil
}

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
)

// Booking rows are hard-deleted on cancellation so the partial unique index
// on (user_id, class_id) never blocks a rebooking.
type Booking struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UserID         uint          `gorm:"not null;index" json:"user_id"`
	ClassID        uint          `gorm:"not null;index" json:"class_id"`
	SubscriptionID *uint         `json:"subscription_id,omitempty"`
	Status         BookingStatus `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	CheckedIn      bool          `gorm:"not null;default:false" json:"checked_in"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	Class *ClassSession `gorm:"foreignKey:ClassID" json:"class,omitempty"`
}

// WaitlistEntry positions for a class form a gapless 1..N sequence.
type WaitlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ClassID   uint      `gorm:"not null;index" json:"class_id"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// SubscriptionPlan is the purchasable template a SubscriptionAccount is cut from.
type SubscriptionPlan struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"not null" json:"name"`
	ClassCount      int             `gorm:"not null" json:"class_count"`
	DurationDays    int             `gorm:"not null" json:"duration_days"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	EquipmentAccess EquipmentType   `gorm:"type:varchar(10);not null;default:'mat'" json:"equipment_access"`
	Category        ClassCategory   `gorm:"type:varchar(10);not null;default:'group'" json:"category"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SubscriptionAccount holds a user's remaining class credits. RemainingClasses
// is only written through the atomic reserve/refund updates in the repository
// and never goes negative.
type SubscriptionAccount struct {
	ID               uint               `gorm:"primaryKey" json:"id"`
	UserID           uint               `gorm:"not null;index" json:"user_id"`
	PlanID           uint               `gorm:"not null" json:"plan_id"`
	RemainingClasses int                `gorm:"not null" json:"remaining_classes"`
	Status           SubscriptionStatus `gorm:"type:varchar(10);not null;default:'active'" json:"status"`
	StartDate        string             `gorm:"type:varchar(10);not null" json:"start_date"`
	EndDate          string             `gorm:"type:varchar(10);not null" json:"end_date"`
	EquipmentAccess  EquipmentType      `gorm:"type:varchar(10);not null;default:'mat'" json:"equipment_access"`
	Category         ClassCategory      `gorm:"type:varchar(10);not null;default:'group'" json:"category"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`

	Plan *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}
