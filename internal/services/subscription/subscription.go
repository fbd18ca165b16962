// Package subscription содержит бизнес-логику тарифных планов и купонов.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Ошибки бизнес-уровня, по которым обработчики выбирают HTTP-статус.
var (
	ErrPlanNotFound      = errors.New("plan not found")
	ErrPlanInactive      = errors.New("plan is not active")
	ErrPlanExists        = errors.New("plan already exists")
	ErrCouponExists      = errors.New("coupon already exists")
	ErrCouponInvalid     = errors.New("invalid coupon code")
	ErrCouponInactive    = errors.New("coupon is not active")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrCouponLimit       = errors.New("coupon usage limit reached")
	ErrCouponAlreadyUsed = errors.New("coupon already used")
	ErrCouponType        = errors.New("unknown coupon type")
)

// SubscriptionRepository определяет методы хранилища для планов и купонов.
type SubscriptionRepository interface {
	ListActivePlans(ctx context.Context) ([]models.Plan, error)
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)
	SavePlan(ctx context.Context, plan models.Plan) error
	AddSubscriptionLog(ctx context.Context, entry models.SubscriptionLog) error
	GetCoupon(ctx context.Context, code string) (*models.Coupon, error)
	CreateCoupon(ctx context.Context, coupon models.Coupon) error
	RedeemCoupon(ctx context.Context, code, userUID string) (bool, error)
	AddCouponUsage(ctx context.Context, userUID, couponCode, benefit string) error
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	SetSubscriptionPlan(ctx context.Context, userUID, planID string) error
	ExtendSubscription(ctx context.Context, userUID string, months int) error
	CountEventsByOrganizer(ctx context.Context, organizerUID string) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// SubscriptionService реализует бизнес-логику подписок и купонов.
type SubscriptionService struct {
	repo  SubscriptionRepository
	cache Cache
	log   *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

const plansCacheKey = "plans:active"

// ListPlans возвращает активные тарифные планы, используя кеш.
func (s *SubscriptionService) ListPlans(ctx context.Context) ([]models.Plan, error) {
	var cached []models.Plan
	found, err := s.cache.Get(plansCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plans from cache", slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	plans, err := s.repo.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(plansCacheKey, plans, time.Hour); err != nil {
		s.log.Warn("failed to cache plans", slog.Any("err", err))
	}
	return plans, nil
}

// Current возвращает текущий план пользователя и использование лимитов.
// Неизвестный план заменяется дефолтами бесплатного тарифа.
func (s *SubscriptionService) Current(ctx context.Context, userUID string) (*models.SubscriptionUsage, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	plan, err := s.repo.GetPlan(ctx, user.SubscriptionPlan)
	if errors.Is(err, repository.ErrNotFound) {
		plan = &models.Plan{ID: "free", Name: "Free", EventsLimit: 2}
	} else if err != nil {
		return nil, err
	}

	used, err := s.repo.CountEventsByOrganizer(ctx, userUID)
	if err != nil {
		return nil, err
	}
	return &models.SubscriptionUsage{
		CurrentPlan: user.SubscriptionPlan,
		PlanDetails: plan,
		EventsUsed:  used,
		EventsLimit: plan.EventsLimit,
	}, nil
}

// Upgrade переводит пользователя на указанный план с записью в журнал.
func (s *SubscriptionService) Upgrade(ctx context.Context, userUID, planID string) (*models.Plan, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetSubscriptionPlan(ctx, userUID, planID); err != nil {
		return nil, err
	}

	entry := models.SubscriptionLog{
		UserUID:  userUID,
		Action:   "upgrade",
		FromPlan: user.SubscriptionPlan,
		ToPlan:   planID,
	}
	if err := s.repo.AddSubscriptionLog(ctx, entry); err != nil {
		s.log.Warn("failed to log plan change", slog.Any("err", err))
	}
	s.log.Info("subscription upgraded",
		slog.String("user", userUID), slog.String("plan", planID))
	return plan, nil
}

// ValidateCoupon проверяет купон без его расходования. Порядок проверок:
// существование, активность, срок действия, лимит, повторное применение.
func (s *SubscriptionService) ValidateCoupon(ctx context.Context, code, userUID string) (*models.Coupon, error) {
	coupon, err := s.repo.GetCoupon(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCouponInvalid
	}
	if err != nil {
		return nil, err
	}
	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(time.Now().UTC()) {
		return nil, ErrCouponExpired
	}
	if coupon.MaxUses > 0 && len(coupon.UsedBy) >= coupon.MaxUses {
		return nil, ErrCouponLimit
	}
	for _, uid := range coupon.UsedBy {
		if uid == userUID {
			return nil, ErrCouponAlreadyUsed
		}
	}
	return coupon, nil
}

// ApplyCoupon повторно проверяет купон, атомарно расходует его
// и применяет льготу согласно типу купона. Возвращает описание выгоды.
func (s *SubscriptionService) ApplyCoupon(ctx context.Context, code, userUID string) (string, error) {
	coupon, err := s.ValidateCoupon(ctx, code, userUID)
	if err != nil {
		return "", err
	}
	// Тип купона проверяется до списания, чтобы отказ не расходовал использование.
	switch coupon.CouponType {
	case models.CouponFreeMonths, models.CouponPlanUpgrade, models.CouponDiscount:
	default:
		return "", ErrCouponType
	}

	ok, err := s.repo.RedeemCoupon(ctx, code, userUID)
	if err != nil {
		return "", err
	}
	if !ok {
		// Состояние изменилось между проверкой и списанием.
		if _, err := s.ValidateCoupon(ctx, code, userUID); err != nil {
			return "", err
		}
		return "", ErrCouponLimit
	}

	var benefit string
	switch coupon.CouponType {
	case models.CouponFreeMonths:
		if err := s.repo.ExtendSubscription(ctx, userUID, coupon.Months); err != nil {
			return "", err
		}
		benefit = fmt.Sprintf("%d free months", coupon.Months)
	case models.CouponPlanUpgrade:
		if err := s.repo.SetSubscriptionPlan(ctx, userUID, coupon.TargetPlan); err != nil {
			return "", err
		}
		benefit = fmt.Sprintf("upgrade to %s", coupon.TargetPlan)
	case models.CouponDiscount:
		benefit = fmt.Sprintf("discount %s %.2f", coupon.DiscountType, coupon.DiscountValue)
	default:
		return "", ErrCouponType
	}

	if err := s.repo.AddCouponUsage(ctx, userUID, code, benefit); err != nil {
		s.log.Warn("failed to log coupon usage", slog.Any("err", err))
	}
	s.log.Info("coupon applied", slog.String("code", code), slog.String("user", userUID))
	return benefit, nil
}

// CreatePlan создает новый тарифный план (операция администратора).
func (s *SubscriptionService) CreatePlan(ctx context.Context, plan models.Plan) error {
	if _, err := s.repo.GetPlan(ctx, plan.ID); err == nil {
		return ErrPlanExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if err := s.repo.SavePlan(ctx, plan); err != nil {
		return err
	}
	if err := s.cache.Invalidate(plansCacheKey); err != nil {
		s.log.Warn("failed to invalidate plans cache", slog.Any("err", err))
	}
	return nil
}

// CreateCoupon создает новый купон (операция администратора).
func (s *SubscriptionService) CreateCoupon(ctx context.Context, coupon models.Coupon) error {
	if _, err := s.repo.GetCoupon(ctx, coupon.Code); err == nil {
		return ErrCouponExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return s.repo.CreateCoupon(ctx, coupon)
}
