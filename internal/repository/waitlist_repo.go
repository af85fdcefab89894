package repository

import (
	"context"

	"github.com/abihavaraj/animo-sub001/internal/models"
	"gorm.io/gorm"
)

type WaitlistRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.WaitlistEntry) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.WaitlistEntry, error)
	FindByUserAndClass(ctx context.Context, tx *gorm.DB, userID, classID uint) (*models.WaitlistEntry, error)
	FindByClassID(ctx context.Context, classID uint) ([]models.WaitlistEntry, error)
	FindHead(ctx context.Context, tx *gorm.DB, classID uint) (*models.WaitlistEntry, error)
	MaxPosition(ctx context.Context, tx *gorm.DB, classID uint) (int, error)
	Delete(ctx context.Context, tx *gorm.DB, entryID uint) (int64, error)
	ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, classID uint, position int) error
	ClassIDsWithEntries(ctx context.Context) ([]uint, error)
	DeleteByClassID(ctx context.Context, tx *gorm.DB, classID uint) (int64, error)
	GetDB() *gorm.DB
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (r *waitlistRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *waitlistRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.WaitlistEntry) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *waitlistRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := tx.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *waitlistRepository) FindByUserAndClass(ctx context.Context, tx *gorm.DB, userID, classID uint) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := tx.WithContext(ctx).
		Where("user_id = ? AND class_id = ?", userID, classID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *waitlistRepository) FindByClassID(ctx context.Context, classID uint) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("position ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FindHead returns the entry with the smallest position for promotion.
func (r *waitlistRepository) FindHead(ctx context.Context, tx *gorm.DB, classID uint) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := tx.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("position ASC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *waitlistRepository) MaxPosition(ctx context.Context, tx *gorm.DB, classID uint) (int, error) {
	var max int
	err := tx.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("class_id = ?", classID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}

func (r *waitlistRepository) Delete(ctx context.Context, tx *gorm.DB, entryID uint) (int64, error) {
	res := tx.WithContext(ctx).Delete(&models.WaitlistEntry{}, entryID)
	return res.RowsAffected, res.Error
}

func (r *waitlistRepository) ClassIDsWithEntries(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Distinct("class_id").
		Pluck("class_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ShiftPositionsAfter closes the gap left by a removed entry so positions for
// the class stay a contiguous 1..N sequence.
func (r *waitlistRepository) ShiftPositionsAfter(ctx context.Context, tx *gorm.DB, classID uint, position int) error {
	return tx.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("class_id = ? AND position > ?", classID, position).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
}

func (r *waitlistRepository) DeleteByClassID(ctx context.Context, tx *gorm.DB, classID uint) (int64, error) {
	res := tx.WithContext(ctx).
		Where("class_id = ?", classID).
		Delete(&models.WaitlistEntry{})
	return res.RowsAffected, res.Error
}
