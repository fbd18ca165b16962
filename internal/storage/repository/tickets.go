package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

const ticketColumns = `uid, user_uid, subject, message, category, priority, status,
			      user_info, responses, assigned_to, internal_notes, resolved_at,
			      resolved_by, assigned_at, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*models.SupportTicket, error) {
	t := &models.SupportTicket{}
	var userInfo, responses []byte
	var assignedTo, resolvedBy sql.NullString
	var resolvedAt, assignedAt sql.NullTime
	if err := row.Scan(&t.UID, &t.UserUID, &t.Subject, &t.Message, &t.Category,
		&t.Priority, &t.Status, &userInfo, &responses, &assignedTo,
		&t.InternalNotes, &resolvedAt, &resolvedBy, &assignedAt,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(userInfo, &t.UserInfo); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(responses, &t.Responses); err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.String
	}
	if resolvedBy.Valid {
		t.ResolvedBy = &resolvedBy.String
	}
	if resolvedAt.Valid {
		t.ResolvedAt = &resolvedAt.Time
	}
	if assignedAt.Valid {
		t.AssignedAt = &assignedAt.Time
	}
	return t, nil
}

// CreateTicket сохраняет новый тикет поддержки и возвращает его UID.
func (s *Storage) CreateTicket(ctx context.Context, ticket models.SupportTicket) (string, error) {
	const op = "storage.CreateTicket"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var userInfo *string
	if ticket.UserInfo != nil {
		data, err := marshalJSON(ticket.UserInfo)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		userInfo = &data
	}
	query := `INSERT INTO support_tickets (user_uid, subject, message, category,
			  priority, status, user_info)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid;`
	var newUID string
	if err := s.DB.QueryRowContext(ctx, query,
		ticket.UserUID, ticket.Subject, ticket.Message, ticket.Category,
		ticket.Priority, ticket.Status, userInfo).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetTicket возвращает тикет по UID.
func (s *Storage) GetTicket(ctx context.Context, ticketUID string) (*models.SupportTicket, error) {
	const op = "storage.GetTicket"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE uid = $1`
	t, err := scanTicket(s.DB.QueryRowContext(ctx, query, ticketUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// ListTicketsByUser возвращает тикеты пользователя, свежие первыми.
func (s *Storage) ListTicketsByUser(ctx context.Context, userUID string) ([]models.SupportTicket, error) {
	const op = "storage.ListTicketsByUser"
	query := `SELECT ` + ticketColumns + ` FROM support_tickets
			  WHERE user_uid = $1 ORDER BY created_at DESC`
	return s.queryTickets(ctx, op, query, userUID)
}

// ListTickets возвращает тикеты, опционально фильтруя по статусу и категории.
func (s *Storage) ListTickets(ctx context.Context, status, category string) ([]models.SupportTicket, error) {
	const op = "storage.ListTickets"
	query := `SELECT ` + ticketColumns + ` FROM support_tickets
			  WHERE ($1 = '' OR status = $1)
			    AND ($2 = '' OR category = $2)
			  ORDER BY created_at DESC`
	return s.queryTickets(ctx, op, query, status, category)
}

// RecentTickets возвращает последние созданные тикеты.
func (s *Storage) RecentTickets(ctx context.Context, limit int) ([]models.SupportTicket, error) {
	const op = "storage.RecentTickets"
	query := `SELECT ` + ticketColumns + ` FROM support_tickets
			  ORDER BY created_at DESC LIMIT $1`
	return s.queryTickets(ctx, op, query, limit)
}

func (s *Storage) queryTickets(ctx context.Context, op, query string, args ...any) ([]models.SupportTicket, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var tickets []models.SupportTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tickets, nil
}

// UpdateTicketResponses перезаписывает тред ответов и статус тикета.
func (s *Storage) UpdateTicketResponses(ctx context.Context, ticketUID string, responses []models.TicketResponse, status string) error {
	const op = "storage.UpdateTicketResponses"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	data, err := marshalJSON(responses)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE support_tickets
			  SET responses = $2::jsonb, status = $3, updated_at = now()
			  WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, ticketUID, data, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdateTicketStatus меняет статус тикета, фиксируя закрывшего при resolved.
func (s *Storage) UpdateTicketStatus(ctx context.Context, ticketUID, status, staffUID, internalNotes string) error {
	const op = "storage.UpdateTicketStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE support_tickets SET
			  status = $2,
			  internal_notes = CASE WHEN $4 <> '' THEN $4 ELSE internal_notes END,
			  resolved_at = CASE WHEN $2 IN ('resolved', 'closed') THEN now() ELSE resolved_at END,
			  resolved_by = CASE WHEN $2 IN ('resolved', 'closed') THEN $3::uuid ELSE resolved_by END,
			  updated_at = now()
			  WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, ticketUID, status, staffUID, internalNotes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// AssignTicket назначает тикет сотруднику поддержки.
func (s *Storage) AssignTicket(ctx context.Context, ticketUID, staffUID string) error {
	const op = "storage.AssignTicket"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE support_tickets SET
			  assigned_to = $2, assigned_at = now(),
			  status = CASE WHEN status = 'open' THEN 'waiting' ELSE status END,
			  updated_at = now()
			  WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, ticketUID, staffUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// CountTicketsByStatus возвращает количество тикетов в разбивке по статусам.
func (s *Storage) CountTicketsByStatus(ctx context.Context) (map[string]int, error) {
	const op = "storage.CountTicketsByStatus"
	return s.countGrouped(ctx, op, `SELECT status, COUNT(*) FROM support_tickets GROUP BY status`)
}

// CountTicketsByCategory возвращает количество тикетов в разбивке по категориям.
func (s *Storage) CountTicketsByCategory(ctx context.Context) (map[string]int, error) {
	const op = "storage.CountTicketsByCategory"
	return s.countGrouped(ctx, op, `SELECT category, COUNT(*) FROM support_tickets GROUP BY category`)
}

func (s *Storage) countGrouped(ctx context.Context, op, query string) (map[string]int, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return counts, nil
}
