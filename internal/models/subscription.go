package models

import "time"

// Plan представляет тарифный план подписки.
//
// EventsLimit == -1 означает отсутствие ограничения на количество событий.
type Plan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	EventsLimit int       `json:"events_limit"`
	Features    []string  `json:"features"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// UnlimitedEvents — значение EventsLimit, снимающее ограничение.
const UnlimitedEvents = -1

// Типы купонов.
const (
	CouponFreeMonths  = "free_months"
	CouponPlanUpgrade = "plan_upgrade"
	CouponDiscount    = "discount"
)

// Coupon представляет купон на льготу по подписке.
//
// MaxUses == 0 означает отсутствие ограничения по количеству использований.
type Coupon struct {
	Code          string     `json:"code"`
	CouponType    string     `json:"coupon_type"`
	Description   string     `json:"description"`
	IsActive      bool       `json:"is_active"`
	MaxUses       int        `json:"max_uses"`
	UsedBy        []string   `json:"used_by"`
	Months        int        `json:"months,omitempty"`         // для free_months
	TargetPlan    string     `json:"target_plan,omitempty"`    // для plan_upgrade
	DiscountType  string     `json:"discount_type,omitempty"`  // для discount
	DiscountValue float64    `json:"discount_value,omitempty"` // для discount
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SubscriptionLog — запись журнала изменений подписки пользователя.
type SubscriptionLog struct {
	ID        int       `json:"id"`
	UserUID   string    `json:"user_uid"`
	Action    string    `json:"action"`
	FromPlan  string    `json:"from_plan"`
	ToPlan    string    `json:"to_plan"`
	CreatedAt time.Time `json:"timestamp"`
}

// SubscriptionUsage — сведения о текущем плане и использовании лимитов.
type SubscriptionUsage struct {
	CurrentPlan string `json:"current_plan"`
	PlanDetails *Plan  `json:"plan_details"`
	EventsUsed  int    `json:"events_used"`
	EventsLimit int    `json:"events_limit"`
}
