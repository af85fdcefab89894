package repository

import (
	"context"

	"github.com/abihavaraj/animo-sub001/internal/models"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindByClassID(ctx context.Context, classID uint) ([]models.Booking, error)
	FindConfirmedByUserAndClass(ctx context.Context, tx *gorm.DB, userID, classID uint) (*models.Booking, error)
	ConfirmedCount(ctx context.Context, tx *gorm.DB, classID uint) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, bookingID uint) (int64, error)
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByClassID(ctx context.Context, classID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("id ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindConfirmedByUserAndClass(ctx context.Context, tx *gorm.DB, userID, classID uint) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Where("user_id = ? AND class_id = ? AND status = ?", userID, classID, models.BookingConfirmed).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) ConfirmedCount(ctx context.Context, tx *gorm.DB, classID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("class_id = ? AND status = ?", classID, models.BookingConfirmed).
		Count(&count).Error
	return count, err
}

// Delete hard-deletes the row so the partial unique index on
// (user_id, class_id) cannot collide with a later rebooking. The rows-affected
// count lets callers detect a concurrent cancellation of the same booking.
func (r *bookingRepository) Delete(ctx context.Context, tx *gorm.DB, bookingID uint) (int64, error) {
	res := tx.WithContext(ctx).Delete(&models.Booking{}, bookingID)
	return res.RowsAffected, res.Error
}
