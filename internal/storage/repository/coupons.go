package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

const couponColumns = `code, coupon_type, description, is_active, max_uses, used_by,
			      months, target_plan, discount_type, discount_value,
			      expires_at, created_by, created_at`

func scanCoupon(row interface{ Scan(...any) error }) (*models.Coupon, error) {
	c := &models.Coupon{}
	var usedBy []byte
	var expiresAt sql.NullTime
	if err := row.Scan(&c.Code, &c.CouponType, &c.Description, &c.IsActive, &c.MaxUses,
		&usedBy, &c.Months, &c.TargetPlan, &c.DiscountType, &c.DiscountValue,
		&expiresAt, &c.CreatedBy, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(usedBy, &c.UsedBy); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		c.ExpiresAt = &expiresAt.Time
	}
	return c, nil
}

// GetCoupon возвращает купон по коду.
func (s *Storage) GetCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	const op = "storage.GetCoupon"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	c, err := scanCoupon(s.DB.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// CreateCoupon сохраняет новый промокод.
func (s *Storage) CreateCoupon(ctx context.Context, coupon models.Coupon) error {
	const op = "storage.CreateCoupon"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO coupons (code, coupon_type, description, is_active, max_uses,
			  months, target_plan, discount_type, discount_value, expires_at, created_by)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := s.DB.ExecContext(ctx, query,
		coupon.Code, coupon.CouponType, coupon.Description, coupon.IsActive,
		coupon.MaxUses, coupon.Months, coupon.TargetPlan, coupon.DiscountType,
		coupon.DiscountValue, coupon.ExpiresAt, coupon.CreatedBy); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RedeemCoupon атомарно добавляет пользователя в список использовавших купон.
// Условия в WHERE отсекают повторное применение, исчерпанный лимит,
// неактивный или просроченный купон даже при конкурентных запросах.
// Возвращает false, если купон применить нельзя.
func (s *Storage) RedeemCoupon(ctx context.Context, code, userUID string) (bool, error) {
	const op = "storage.RedeemCoupon"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE coupons
			  SET used_by = used_by || to_jsonb($2::text)
			  WHERE code = $1
			    AND is_active = TRUE
			    AND NOT used_by @> to_jsonb($2::text)
			    AND (max_uses <= 0 OR jsonb_array_length(used_by) < max_uses)
			    AND (expires_at IS NULL OR expires_at > now())`
	result, err := s.DB.ExecContext(ctx, query, code, userUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}

// AddCouponUsage записывает факт применения купона и полученную выгоду.
func (s *Storage) AddCouponUsage(ctx context.Context, userUID, couponCode, benefit string) error {
	const op = "storage.AddCouponUsage"
	query := `INSERT INTO coupon_usage (user_uid, coupon_code, benefit)
			  VALUES ($1, $2, $3)`
	if _, err := s.DB.ExecContext(ctx, query, userUID, couponCode, benefit); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
