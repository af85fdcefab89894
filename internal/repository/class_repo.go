package repository

import (
	"context"

	"github.com/abihavaraj/animo-sub001/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClassRepository interface {
	Create(ctx context.Context, class *models.ClassSession) error
	FindByID(ctx context.Context, id uint) (*models.ClassSession, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ClassSession, error)
	FindActiveByDate(ctx context.Context, date string) ([]models.ClassSession, error)
	Update(ctx context.Context, class *models.ClassSession) error
	UpdateStatus(ctx context.Context, classID uint, status models.ClassStatus) error
	TryReserveSlot(ctx context.Context, tx *gorm.DB, classID uint) (bool, error)
	ReleaseSlot(ctx context.Context, tx *gorm.DB, classID uint) error
	GetDB() *gorm.DB
}

type classRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *classRepository) Create(ctx context.Context, class *models.ClassSession) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) FindByID(ctx context.Context, id uint) (*models.ClassSession, error) {
	var class models.ClassSession
	if err := r.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByIDForUpdate acquires a row-level lock on the class within the given
// transaction, serializing concurrent booking, cancellation and waitlist
// mutations per class. SQLite has no FOR UPDATE; its transaction write lock
// already serializes writers.
func (r *classRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ClassSession, error) {
	q := tx.WithContext(ctx)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var class models.ClassSession
	if err := q.First(&class, id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepository) FindActiveByDate(ctx context.Context, date string) ([]models.ClassSession, error) {
	var classes []models.ClassSession
	err := r.db.WithContext(ctx).
		Where("date = ? AND status = ?", date, models.ClassActive).
		Order("time ASC, id ASC").
		Find(&classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) Update(ctx context.Context, class *models.ClassSession) error {
	return r.db.WithContext(ctx).Save(class).Error
}

func (r *classRepository) UpdateStatus(ctx context.Context, classID uint, status models.ClassStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.ClassSession{}).
		Where("id = ?", classID).
		Update("status", status).Error
}

// TryReserveSlot atomically tests enrolled < capacity and increments in one
// statement; a zero rows-affected result means the class is full. Two
// concurrent requests for the last slot can therefore never both succeed.
func (r *classRepository) TryReserveSlot(ctx context.Context, tx *gorm.DB, classID uint) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.ClassSession{}).
		Where("id = ? AND enrolled < capacity", classID).
		UpdateColumn("enrolled", gorm.Expr("enrolled + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *classRepository) ReleaseSlot(ctx context.Context, tx *gorm.DB, classID uint) error {
	return tx.WithContext(ctx).
		Model(&models.ClassSession{}).
		Where("id = ? AND enrolled > 0", classID).
		UpdateColumn("enrolled", gorm.Expr("enrolled - 1")).Error
}
