package service

import (
	"context"
	"errors"
	"time"

	"github.com/abihavaraj/animo-sub001/internal/models"
	"github.com/abihavaraj/animo-sub001/internal/repository"
	"gorm.io/gorm"
)

type SubscriptionService interface {
	Purchase(ctx context.Context, userID, planID uint) (*models.SubscriptionAccount, error)
	Renew(ctx context.Context, accountID uint) (*models.SubscriptionAccount, error)
	Extend(ctx context.Context, accountID uint, days int) (*models.SubscriptionAccount, error)
	Pause(ctx context.Context, accountID uint) (*models.SubscriptionAccount, error)
	Resume(ctx context.Context, accountID uint) (*models.SubscriptionAccount, error)
	Cancel(ctx context.Context, accountID uint) (*models.SubscriptionAccount, error)
	GetAccount(ctx context.Context, accountID uint) (*models.SubscriptionAccount, error)
	ListAccounts(ctx context.Context, userID uint) ([]models.SubscriptionAccount, error)
}

type subscriptionService struct {
	subRepo repository.SubscriptionRepository
	now     func() time.Time
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository) SubscriptionService {
	return &subscriptionService{subRepo: subRepo, now: time.Now}
}

const dateLayout = "2006-01-02"

func (s *subscriptionService) Purchase(ctx context.Context, userID, planID uint) (*models.SubscriptionAccount, error) {
	plan, err := s.subRepo.FindPlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	start := s.now()
	account := &models.SubscriptionAccount{
		UserID:           userID,
		PlanID:           plan.ID,
		RemainingClasses: plan.ClassCount,
		Status:           models.SubscriptionActive,
		StartDate:        start.Format(dateLayout),
		EndDate:          start.AddDate(0, 0, plan.DurationDays).Format(dateLayout),
		EquipmentAccess:  plan.EquipmentAccess,
		Category:         plan.Category,
	}
	if err := s.subRepo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Renew tops the account back up to its plan's class count and rolls the
// validity window forward from today.
func (s *subscriptionService) Renew(ctx context.Context, accountID uint) (*models.SubscriptionAccount, error) {
	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	plan, err := s.subRepo.FindPlanByID(ctx, account.PlanID)
	if err != nil {
		return nil, err
	}

	start := s.now()
	account.RemainingClasses = plan.ClassCount
	account.Status = models.SubscriptionActive
	account.StartDate = start.Format(dateLayout)
	account.EndDate = start.AddDate(0, 0, plan.DurationDays).Format(dateLayout)
	if err := s.subRepo.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *subscriptionService) Extend(ctx context.Context, accountID uint, days int) (*models.SubscriptionAccount, error) {
	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	end, err := time.ParseInLocation(dateLayout, account.EndDate, time.Local)
	if err != nil {
		return nil, err
	}
	account.EndDate = end.AddDate(0, 0, days).Format(dateLayout)
	if err := s.subRepo.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *subscriptionService) Pause(ctx context.Context, accountID uint) (*models.SubscriptionAccount, error) {
	return s.transition(ctx, accountID, models.SubscriptionActive, models.SubscriptionPaused)
}

func (s *subscriptionService) Resume(ctx context.Context, accountID uint) (*models.SubscriptionAccount, error) {
	return s.transition(ctx, accountID, models.SubscriptionPaused, models.SubscriptionActive)
}

// Cancel keeps the remaining credits spendable until the end date passes;
// the bookable-account query treats such accounts as a grace window.
func (s *subscriptionService) Cancel(ctx context.Context, accountID uint) (*models.SubscriptionAccount, error) {
	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status == models.SubscriptionCancelled || account.Status == models.SubscriptionExpired {
		return nil, ErrSubscriptionState
	}
	account.Status = models.SubscriptionCancelled
	if err := s.subRepo.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *subscriptionService) GetAccount(ctx context.Context, accountID uint) (*models.SubscriptionAccount, error) {
	return s.findAccount(ctx, accountID)
}

func (s *subscriptionService) ListAccounts(ctx context.Context, userID uint) ([]models.SubscriptionAccount, error) {
	return s.subRepo.FindAccountsByUser(ctx, userID)
}

func (s *subscriptionService) findAccount(ctx context.Context, accountID uint) (*models.SubscriptionAccount, error) {
	account, err := s.subRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *subscriptionService) transition(ctx context.Context, accountID uint, from, to models.SubscriptionStatus) (*models.SubscriptionAccount, error) {
	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status != from {
		return nil, ErrSubscriptionState
	}
	account.Status = to
	if err := s.subRepo.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// checkEntitlement enforces the category and equipment gates between a
// subscription account and a class: categories must match exactly, and
// equipment must match exactly unless the account grants "both".
func checkEntitlement(account *models.SubscriptionAccount, class *models.ClassSession) error {
	if account.Category != class.Category {
		return ErrCategoryMismatch
	}
	if account.EquipmentAccess != models.EquipmentBoth && account.EquipmentAccess != class.EquipmentType {
		return ErrEquipmentMismatch
	}
	return nil
}
