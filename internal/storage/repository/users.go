package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

const userColumns = `uid, email, username, password_hash, role, subscription_plan,
			      invite_codes, is_suspended, is_banned, suspended_at, banned_at,
			      subscription_end, created_at, last_login`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var inviteCodes []byte
	var suspendedAt, bannedAt, subscriptionEnd, lastLogin sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.SubscriptionPlan, &inviteCodes, &u.IsSuspended, &u.IsBanned,
		&suspendedAt, &bannedAt, &subscriptionEnd, &u.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(inviteCodes, &u.InviteCodes); err != nil {
		return nil, err
	}
	if suspendedAt.Valid {
		u.SuspendedAt = &suspendedAt.Time
	}
	if bannedAt.Valid {
		u.BannedAt = &bannedAt.Time
	}
	if subscriptionEnd.Valid {
		u.SubscriptionEnd = &subscriptionEnd.Time
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, username, password_hash, role, subscription_plan)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role,
		user.SubscriptionPlan).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по его email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateLastLogin отмечает время последнего входа пользователя.
func (s *Storage) UpdateLastLogin(ctx context.Context, userUID string) error {
	const op = "storage.UpdateLastLogin"
	query := `UPDATE users SET last_login = now() WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteUser удаляет пользователя. Используется для отката регистрации,
// если инвайт-код был израсходован конкурентным запросом.
func (s *Storage) DeleteUser(ctx context.Context, userUID string) error {
	const op = "storage.DeleteUser"
	query := `DELETE FROM users WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// AppendGeneratedInvite добавляет код в список сгенерированных пользователем инвайтов.
func (s *Storage) AppendGeneratedInvite(ctx context.Context, userUID, code string) error {
	const op = "storage.AppendGeneratedInvite"
	query := `UPDATE users
			  SET invite_codes = invite_codes || to_jsonb($1::text)
			  WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, code, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetSubscriptionPlan назначает пользователю тарифный план.
func (s *Storage) SetSubscriptionPlan(ctx context.Context, userUID, planID string) error {
	const op = "storage.SetSubscriptionPlan"
	query := `UPDATE users SET subscription_plan = $1 WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, planID, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ExtendSubscription продлевает оплаченный период пользователя на months месяцев.
// Если период не задан или уже истёк, отсчёт идёт от текущего момента.
func (s *Storage) ExtendSubscription(ctx context.Context, userUID string, months int) error {
	const op = "storage.ExtendSubscription"
	query := `UPDATE users
			  SET subscription_end = GREATEST(COALESCE(subscription_end, now()), now())
			      + ($1 || ' months')::interval
			  WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, months, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetSuspended обновляет флаг приостановки учётной записи.
func (s *Storage) SetSuspended(ctx context.Context, userUID, moderatorUID string) error {
	const op = "storage.SetSuspended"
	query := `UPDATE users
			  SET is_suspended = TRUE, suspended_at = now(), suspended_by = $1
			  WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, moderatorUID, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetBanned помечает учётную запись заблокированной навсегда.
func (s *Storage) SetBanned(ctx context.Context, userUID, moderatorUID string) error {
	const op = "storage.SetBanned"
	query := `UPDATE users
			  SET is_banned = TRUE, banned_at = now(), banned_by = $1
			  WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, moderatorUID, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateOrganizerRequest сохраняет заявку на роль организатора.
func (s *Storage) CreateOrganizerRequest(ctx context.Context, req models.OrganizerRequest) (int, error) {
	const op = "storage.CreateOrganizerRequest"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO organizer_requests (user_uid, company_name, description, experience, status)
			  VALUES ($1, $2, $3, $4, 'pending')
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query,
		req.UserUID, req.CompanyName, req.Description, req.Experience).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// AddUserModeration сохраняет запись о предупреждении, приостановке или блокировке пользователя.
func (s *Storage) AddUserModeration(ctx context.Context, userUID, action, reason, moderatorUID string, durationDays int) error {
	const op = "storage.AddUserModeration"
	var expiresAt *time.Time
	if durationDays > 0 {
		t := time.Now().UTC().AddDate(0, 0, durationDays)
		expiresAt = &t
	}
	query := `INSERT INTO user_moderation (user_uid, action, reason, moderator_uid, duration_days, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.DB.ExecContext(ctx, query,
		userUID, action, reason, moderatorUID, durationDays, expiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
