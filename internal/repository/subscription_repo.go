package repository

import (
	"context"

	"github.com/abihavaraj/animo-sub001/internal/models"
	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	CreateAccount(ctx context.Context, account *models.SubscriptionAccount) error
	FindAccountByID(ctx context.Context, id uint) (*models.SubscriptionAccount, error)
	FindAccountsByUser(ctx context.Context, userID uint) ([]models.SubscriptionAccount, error)
	FindBookableByUser(ctx context.Context, tx *gorm.DB, userID uint, today string) (*models.SubscriptionAccount, error)
	UpdateAccount(ctx context.Context, account *models.SubscriptionAccount) error
	ReserveCredit(ctx context.Context, tx *gorm.DB, accountID uint) (bool, error)
	RefundCredit(ctx context.Context, tx *gorm.DB, accountID uint) error
	FindPlanByID(ctx context.Context, id uint) (*models.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error
	GetDB() *gorm.DB
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *subscriptionRepository) CreateAccount(ctx context.Context, account *models.SubscriptionAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *subscriptionRepository) FindAccountByID(ctx context.Context, id uint) (*models.SubscriptionAccount, error) {
	var account models.SubscriptionAccount
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *subscriptionRepository) FindAccountsByUser(ctx context.Context, userID uint) ([]models.SubscriptionAccount, error) {
	var accounts []models.SubscriptionAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindBookableByUser selects the most recent account a booking may draw
// credits from: an active one, or a cancelled one that still has credits and
// has not passed its end date (already-paid credits keep a grace window).
func (r *subscriptionRepository) FindBookableByUser(ctx context.Context, tx *gorm.DB, userID uint, today string) (*models.SubscriptionAccount, error) {
	var account models.SubscriptionAccount
	err := tx.WithContext(ctx).
		Where("user_id = ? AND (status = ? OR (status = ? AND remaining_classes > 0 AND end_date >= ?))",
			userID, models.SubscriptionActive, models.SubscriptionCancelled, today).
		Order("id DESC").
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *subscriptionRepository) UpdateAccount(ctx context.Context, account *models.SubscriptionAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// ReserveCredit atomically decrements the balance; zero rows affected means
// the balance was already 0. The guard keeps remaining_classes non-negative
// under concurrent bookings.
func (r *subscriptionRepository) ReserveCredit(ctx context.Context, tx *gorm.DB, accountID uint) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.SubscriptionAccount{}).
		Where("id = ? AND remaining_classes > 0", accountID).
		UpdateColumn("remaining_classes", gorm.Expr("remaining_classes - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RefundCredit restores one credit with no ceiling at the plan's class count.
func (r *subscriptionRepository) RefundCredit(ctx context.Context, tx *gorm.DB, accountID uint) error {
	return tx.WithContext(ctx).
		Model(&models.SubscriptionAccount{}).
		Where("id = ?", accountID).
		UpdateColumn("remaining_classes", gorm.Expr("remaining_classes + 1")).Error
}

func (r *subscriptionRepository) FindPlanByID(ctx context.Context, id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *subscriptionRepository) CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}
