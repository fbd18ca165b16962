package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

const inviteColumns = `id, code, max_uses, current_uses, used, used_by, last_used_by,
			      expires_at, created_by, created_at, used_at, last_used_at`

func scanInvite(row interface{ Scan(...any) error }) (*models.InviteCode, error) {
	inv := &models.InviteCode{}
	var usedBy, lastUsedBy sql.NullString
	var expiresAt, usedAt, lastUsedAt sql.NullTime
	if err := row.Scan(&inv.ID, &inv.Code, &inv.MaxUses, &inv.CurrentUses, &inv.Used,
		&usedBy, &lastUsedBy, &expiresAt, &inv.CreatedBy, &inv.CreatedAt,
		&usedAt, &lastUsedAt); err != nil {
		return nil, err
	}
	if usedBy.Valid {
		inv.UsedBy = &usedBy.String
	}
	if lastUsedBy.Valid {
		inv.LastUsedBy = &lastUsedBy.String
	}
	if expiresAt.Valid {
		inv.ExpiresAt = &expiresAt.Time
	}
	if usedAt.Valid {
		inv.UsedAt = &usedAt.Time
	}
	if lastUsedAt.Valid {
		inv.LastUsedAt = &lastUsedAt.Time
	}
	return inv, nil
}

// CreateInvite сохраняет новый инвайт-код.
func (s *Storage) CreateInvite(ctx context.Context, invite models.InviteCode) (int, error) {
	const op = "storage.CreateInvite"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO invite_codes (code, max_uses, expires_at, created_by)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query,
		invite.Code, invite.MaxUses, invite.ExpiresAt, invite.CreatedBy).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetInviteByCode возвращает инвайт-код по его значению.
func (s *Storage) GetInviteByCode(ctx context.Context, code string) (*models.InviteCode, error) {
	const op = "storage.GetInviteByCode"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + inviteColumns + ` FROM invite_codes WHERE code = $1`
	inv, err := scanInvite(s.DB.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inv, nil
}

// RedeemInvite помечает код использованным атомарно: условие в WHERE
// гарантирует, что два конкурентных запроса не израсходуют код сверх лимита.
// Возвращает false, если код уже исчерпан, просрочен или не найден.
func (s *Storage) RedeemInvite(ctx context.Context, code, userUID string) (bool, error) {
	const op = "storage.RedeemInvite"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE invite_codes
			  SET used = CASE WHEN max_uses = 1 THEN TRUE ELSE used END,
			      used_by = CASE WHEN max_uses = 1 THEN $2::uuid ELSE used_by END,
			      used_at = CASE WHEN max_uses = 1 THEN now() ELSE used_at END,
			      current_uses = current_uses + 1,
			      last_used_by = $2::uuid,
			      last_used_at = now()
			  WHERE code = $1
			    AND used = FALSE
			    AND (max_uses <= 0 OR current_uses < max_uses)
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

// CountGeneratedInvites возвращает количество кодов, созданных пользователем.
func (s *Storage) CountGeneratedInvites(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountGeneratedInvites"
	query := `SELECT COUNT(*) FROM invite_codes WHERE created_by = $1`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
