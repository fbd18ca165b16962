package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

const planColumns = `id, name, price, events_limit, features, is_active, created_at`

func scanPlan(row interface{ Scan(...any) error }) (*models.Plan, error) {
	p := &models.Plan{}
	var features []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.EventsLimit,
		&features, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(features, &p.Features); err != nil {
		return nil, err
	}
	return p, nil
}

// ListActivePlans возвращает активные тарифные планы по возрастанию цены.
func (s *Storage) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.ListActivePlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + ` FROM plans WHERE is_active = TRUE ORDER BY price`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// GetPlan возвращает тарифный план по идентификатору.
func (s *Storage) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	p, err := scanPlan(s.DB.QueryRowContext(ctx, query, planID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// SavePlan создаёт тарифный план или обновляет существующий с тем же id.
func (s *Storage) SavePlan(ctx context.Context, plan models.Plan) error {
	const op = "storage.SavePlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	features, err := marshalJSON(plan.Features)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := `INSERT INTO plans (id, name, price, events_limit, features, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (id) DO UPDATE SET
			  name = EXCLUDED.name,
			  price = EXCLUDED.price,
			  events_limit = EXCLUDED.events_limit,
			  features = EXCLUDED.features,
			  is_active = EXCLUDED.is_active`
	if _, err := s.DB.ExecContext(ctx, query,
		plan.ID, plan.Name, plan.Price, plan.EventsLimit, features, plan.IsActive); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AddSubscriptionLog записывает смену тарифного плана пользователя.
func (s *Storage) AddSubscriptionLog(ctx context.Context, entry models.SubscriptionLog) error {
	const op = "storage.AddSubscriptionLog"
	query := `INSERT INTO subscription_logs (user_uid, action, from_plan, to_plan)
			  VALUES ($1, $2, $3, $4)`
	if _, err := s.DB.ExecContext(ctx, query,
		entry.UserUID, entry.Action, entry.FromPlan, entry.ToPlan); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
