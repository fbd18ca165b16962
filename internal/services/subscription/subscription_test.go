package subscription

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Plan), args.Error(1)
}
func (m *RepoMock) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *RepoMock) SavePlan(ctx context.Context, plan models.Plan) error {
	return m.Called(ctx, plan).Error(0)
}
func (m *RepoMock) AddSubscriptionLog(ctx context.Context, entry models.SubscriptionLog) error {
	return m.Called(ctx, entry).Error(0)
}
func (m *RepoMock) GetCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Coupon), args.Error(1)
}
func (m *RepoMock) CreateCoupon(ctx context.Context, coupon models.Coupon) error {
	return m.Called(ctx, coupon).Error(0)
}
func (m *RepoMock) RedeemCoupon(ctx context.Context, code, userUID string) (bool, error) {
	args := m.Called(ctx, code, userUID)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) AddCouponUsage(ctx context.Context, userUID, couponCode, benefit string) error {
	return m.Called(ctx, userUID, couponCode, benefit).Error(0)
}
func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) SetSubscriptionPlan(ctx context.Context, userUID, planID string) error {
	return m.Called(ctx, userUID, planID).Error(0)
}
func (m *RepoMock) ExtendSubscription(ctx context.Context, userUID string, months int) error {
	return m.Called(ctx, userUID, months).Error(0)
}
func (m *RepoMock) CountEventsByOrganizer(ctx context.Context, organizerUID string) (int, error) {
	args := m.Called(ctx, organizerUID)
	return args.Int(0), args.Error(1)
}

// NoopCache — кеш, который всегда промахивается.
type NoopCache struct{}

func (NoopCache) Get(_ string, _ any) (bool, error)          { return false, nil }
func (NoopCache) Set(_ string, _ any, _ time.Duration) error { return nil }
func (NoopCache) Invalidate(_ string) error                  { return nil }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(repo *RepoMock) *SubscriptionService {
	return NewSubscriptionService(repo, NoopCache{}, newNoopLogger())
}

func TestCurrent(t *testing.T) {
	t.Run("план найден", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUser", mock.Anything, "uid-1").
			Return(&models.User{UID: "uid-1", SubscriptionPlan: "pro"}, nil)
		repo.On("GetPlan", mock.Anything, "pro").
			Return(&models.Plan{ID: "pro", EventsLimit: 10}, nil)
		repo.On("CountEventsByOrganizer", mock.Anything, "uid-1").Return(3, nil)

		svc := newService(repo)
		usage, err := svc.Current(context.Background(), "uid-1")

		assert.NoError(t, err)
		assert.Equal(t, "pro", usage.CurrentPlan)
		assert.Equal(t, 3, usage.EventsUsed)
		assert.Equal(t, 10, usage.EventsLimit)
	})

	t.Run("неизвестный план заменяется бесплатным", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUser", mock.Anything, "uid-1").
			Return(&models.User{UID: "uid-1", SubscriptionPlan: "legacy"}, nil)
		repo.On("GetPlan", mock.Anything, "legacy").Return(nil, repository.ErrNotFound)
		repo.On("CountEventsByOrganizer", mock.Anything, "uid-1").Return(0, nil)

		svc := newService(repo)
		usage, err := svc.Current(context.Background(), "uid-1")

		assert.NoError(t, err)
		assert.Equal(t, 2, usage.EventsLimit)
	})
}

func TestUpgrade(t *testing.T) {
	t.Run("успешная смена плана", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPlan", mock.Anything, "pro").
			Return(&models.Plan{ID: "pro", IsActive: true}, nil)
		repo.On("GetUser", mock.Anything, "uid-1").
			Return(&models.User{UID: "uid-1", SubscriptionPlan: "free"}, nil)
		repo.On("SetSubscriptionPlan", mock.Anything, "uid-1", "pro").Return(nil)
		repo.On("AddSubscriptionLog", mock.Anything, mock.MatchedBy(func(e models.SubscriptionLog) bool {
			return e.Action == "upgrade" && e.FromPlan == "free" && e.ToPlan == "pro"
		})).Return(nil)

		svc := newService(repo)
		plan, err := svc.Upgrade(context.Background(), "uid-1", "pro")

		assert.NoError(t, err)
		assert.Equal(t, "pro", plan.ID)
	})

	t.Run("несуществующий план", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPlan", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

		svc := newService(repo)
		_, err := svc.Upgrade(context.Background(), "uid-1", "ghost")

		assert.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("неактивный план", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPlan", mock.Anything, "old").
			Return(&models.Plan{ID: "old", IsActive: false}, nil)

		svc := newService(repo)
		_, err := svc.Upgrade(context.Background(), "uid-1", "old")

		assert.ErrorIs(t, err, ErrPlanInactive)
	})
}

func TestValidateCoupon(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)

	tests := []struct {
		name      string
		setupMock func(*RepoMock)
		wantErr   error
	}{
		{
			name: "валидный купон",
			setupMock: func(m *RepoMock) {
				m.On("GetCoupon", mock.Anything, "SUMMER").
					Return(&models.Coupon{Code: "SUMMER", IsActive: true, MaxUses: 10}, nil)
			},
			wantErr: nil,
		},
		{
			name: "несуществующий купон",
			setupMock: func(m *RepoMock) {
				m.On("GetCoupon", mock.Anything, "SUMMER").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrCouponInvalid,
		},
		{
			name: "неактивный купон",
			setupMock: func(m *RepoMock) {
				m.On("GetCoupon", mock.Anything, "SUMMER").
					Return(&models.Coupon{Code: "SUMMER", IsActive: false}, nil)
			},
			wantErr: ErrCouponInactive,
		},
		{
			name: "просроченный купон",
			setupMock: func(m *RepoMock) {
				m.On("GetCoupon", mock.Anything, "SUMMER").
					Return(&models.Coupon{Code: "SUMMER", IsActive: true, ExpiresAt: &past}, nil)
			},
			wantErr: ErrCouponExpired,
		},
		{
			name: "исчерпан лимит использований",
			setupMock: func(m *RepoMock) {
				m.On("GetCoupon", mock.Anything, "SUMMER").
					Return(&models.Coupon{Code: "SUMMER", IsActive: true, MaxUses: 2,
						UsedBy: []string{"a", "b"}}, nil)
			},
			wantErr: ErrCouponLimit,
		},
		{
			name: "повторное применение",
			setupMock: func(m *RepoMock) {
				m.On("GetCoupon", mock.Anything, "SUMMER").
					Return(&models.Coupon{Code: "SUMMER", IsActive: true, MaxUses: 10,
						UsedBy: []string{"uid-1"}}, nil)
			},
			wantErr: ErrCouponAlreadyUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMock(repo)

			svc := newService(repo)
			_, err := svc.ValidateCoupon(context.Background(), "SUMMER", "uid-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyCoupon(t *testing.T) {
	t.Run("купон на бесплатные месяцы", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCoupon", mock.Anything, "FREE3").
			Return(&models.Coupon{Code: "FREE3", IsActive: true,
				CouponType: models.CouponFreeMonths, Months: 3}, nil)
		repo.On("RedeemCoupon", mock.Anything, "FREE3", "uid-1").Return(true, nil)
		repo.On("ExtendSubscription", mock.Anything, "uid-1", 3).Return(nil)
		repo.On("AddCouponUsage", mock.Anything, "uid-1", "FREE3", "3 free months").Return(nil)

		svc := newService(repo)
		benefit, err := svc.ApplyCoupon(context.Background(), "FREE3", "uid-1")

		assert.NoError(t, err)
		assert.Equal(t, "3 free months", benefit)
	})

	t.Run("купон на апгрейд плана", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCoupon", mock.Anything, "GOPRO").
			Return(&models.Coupon{Code: "GOPRO", IsActive: true,
				CouponType: models.CouponPlanUpgrade, TargetPlan: "pro"}, nil)
		repo.On("RedeemCoupon", mock.Anything, "GOPRO", "uid-1").Return(true, nil)
		repo.On("SetSubscriptionPlan", mock.Anything, "uid-1", "pro").Return(nil)
		repo.On("AddCouponUsage", mock.Anything, "uid-1", "GOPRO", "upgrade to pro").Return(nil)

		svc := newService(repo)
		benefit, err := svc.ApplyCoupon(context.Background(), "GOPRO", "uid-1")

		assert.NoError(t, err)
		assert.Equal(t, "upgrade to pro", benefit)
	})

	t.Run("неизвестный тип купона не расходует использование", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCoupon", mock.Anything, "ODD").
			Return(&models.Coupon{Code: "ODD", IsActive: true, CouponType: "cashback"}, nil)

		svc := newService(repo)
		_, err := svc.ApplyCoupon(context.Background(), "ODD", "uid-1")

		assert.ErrorIs(t, err, ErrCouponType)
		repo.AssertNotCalled(t, "RedeemCoupon", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("гонка при списании", func(t *testing.T) {
		repo := new(RepoMock)
		coupon := &models.Coupon{Code: "RACE", IsActive: true,
			CouponType: models.CouponFreeMonths, Months: 1, MaxUses: 10}
		repo.On("GetCoupon", mock.Anything, "RACE").Return(coupon, nil)
		repo.On("RedeemCoupon", mock.Anything, "RACE", "uid-1").Return(false, nil)

		svc := newService(repo)
		_, err := svc.ApplyCoupon(context.Background(), "RACE", "uid-1")

		assert.ErrorIs(t, err, ErrCouponLimit)
	})
}

func TestCreatePlan(t *testing.T) {
	t.Run("дубликат плана", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPlan", mock.Anything, "pro").
			Return(&models.Plan{ID: "pro"}, nil)

		svc := newService(repo)
		err := svc.CreatePlan(context.Background(), models.Plan{ID: "pro"})

		assert.ErrorIs(t, err, ErrPlanExists)
	})

	t.Run("новый план сохраняется", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPlan", mock.Anything, "vip").Return(nil, repository.ErrNotFound)
		repo.On("SavePlan", mock.Anything, mock.Anything).Return(nil)

		svc := newService(repo)
		err := svc.CreatePlan(context.Background(), models.Plan{ID: "vip"})

		assert.NoError(t, err)
	})
}

func TestCreateCoupon(t *testing.T) {
	t.Run("дубликат купона", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCoupon", mock.Anything, "SUMMER").
			Return(&models.Coupon{Code: "SUMMER"}, nil)

		svc := newService(repo)
		err := svc.CreateCoupon(context.Background(), models.Coupon{Code: "SUMMER"})

		assert.ErrorIs(t, err, ErrCouponExists)
	})
}
