package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

const eventColumns = `uid, title, description, genre, organizer_uid, date_start, date_end,
			      location, price, ticket_url, lineup, is_public, attendees,
			      interested, comments, hidden_by, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	ev := &models.Event{}
	var lineup, attendees, interested, comments []byte
	var hiddenBy sql.NullString
	if err := row.Scan(&ev.UID, &ev.Title, &ev.Description, &ev.Genre, &ev.OrganizerUID,
		&ev.DateStart, &ev.DateEnd, &ev.Location, &ev.Price, &ev.TicketURL,
		&lineup, &ev.IsPublic, &attendees, &interested, &comments,
		&hiddenBy, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(lineup, &ev.Lineup); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(attendees, &ev.Attendees); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(interested, &ev.Interested); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(comments, &ev.Comments); err != nil {
		return nil, err
	}
	if hiddenBy.Valid {
		ev.HiddenBy = &hiddenBy.String
	}
	return ev, nil
}

// CreateEvent сохраняет новое мероприятие и возвращает его UID.
func (s *Storage) CreateEvent(ctx context.Context, event models.Event) (string, error) {
	const op = "storage.CreateEvent"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	lineup, err := marshalJSON(event.Lineup)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	query := `INSERT INTO events (title, description, genre, organizer_uid, date_start,
			  date_end, location, price, ticket_url, lineup, is_public)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING uid;`
	var newUID string
	if err := s.DB.QueryRowContext(ctx, query,
		event.Title, event.Description, event.Genre, event.OrganizerUID,
		event.DateStart, event.DateEnd, event.Location, event.Price,
		event.TicketURL, lineup, event.IsPublic).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetEvent возвращает мероприятие по UID.
func (s *Storage) GetEvent(ctx context.Context, eventUID string) (*models.Event, error) {
	const op = "storage.GetEvent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE uid = $1`
	ev, err := scanEvent(s.DB.QueryRowContext(ctx, query, eventUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ev, nil
}

// ListAllEvents возвращает все мероприятия, отсортированные по дате начала.
func (s *Storage) ListAllEvents(ctx context.Context) ([]models.Event, error) {
	const op = "storage.ListAllEvents"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date_start`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

// UpdateEvent обновляет только переданные поля мероприятия.
func (s *Storage) UpdateEvent(ctx context.Context, eventUID string, upd models.EventUpdate) error {
	const op = "storage.UpdateEvent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE events SET
			  title = COALESCE($2, title),
			  description = COALESCE($3, description),
			  genre = COALESCE($4, genre),
			  date_start = COALESCE($5, date_start),
			  date_end = COALESCE($6, date_end),
			  location = COALESCE($7, location),
			  price = COALESCE($8, price),
			  ticket_url = COALESCE($9, ticket_url),
			  lineup = COALESCE($10::jsonb, lineup),
			  is_public = COALESCE($11, is_public),
			  updated_at = now()
			  WHERE uid = $1`
	var lineup *string
	if upd.Lineup != nil {
		data, err := marshalJSON(*upd.Lineup)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		lineup = &data
	}
	result, err := s.DB.ExecContext(ctx, query, eventUID,
		upd.Title, upd.Description, upd.Genre, upd.DateStart, upd.DateEnd,
		upd.Location, upd.Price, upd.TicketURL, lineup, upd.IsPublic)
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

// DeleteEvent удаляет мероприятие по UID.
func (s *Storage) DeleteEvent(ctx context.Context, eventUID string) error {
	const op = "storage.DeleteEvent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM events WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, eventUID)
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

// CountEventsByOrganizer возвращает число мероприятий организатора.
func (s *Storage) CountEventsByOrganizer(ctx context.Context, organizerUID string) (int, error) {
	const op = "storage.CountEventsByOrganizer"
	query := `SELECT COUNT(*) FROM events WHERE organizer_uid = $1`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, organizerUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// UpdateAttendees перезаписывает список идущих на мероприятие.
func (s *Storage) UpdateAttendees(ctx context.Context, eventUID string, attendees []string) error {
	const op = "storage.UpdateAttendees"
	return s.updateEventList(ctx, op, "attendees", eventUID, attendees)
}

// UpdateInterested перезаписывает список заинтересованных.
func (s *Storage) UpdateInterested(ctx context.Context, eventUID string, interested []string) error {
	const op = "storage.UpdateInterested"
	return s.updateEventList(ctx, op, "interested", eventUID, interested)
}

// UpdateComments перезаписывает список комментариев мероприятия.
func (s *Storage) UpdateComments(ctx context.Context, eventUID string, comments []models.Comment) error {
	const op = "storage.UpdateComments"
	return s.updateEventList(ctx, op, "comments", eventUID, comments)
}

func (s *Storage) updateEventList(ctx context.Context, op, column, eventUID string, list any) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	data, err := marshalJSON(list)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := fmt.Sprintf(`UPDATE events SET %s = $2::jsonb, updated_at = now() WHERE uid = $1`, column)
	result, err := s.DB.ExecContext(ctx, query, eventUID, data)
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

// HideEvent помечает мероприятие скрытым модератором.
func (s *Storage) HideEvent(ctx context.Context, eventUID, moderatorUID string) error {
	const op = "storage.HideEvent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE events SET is_public = FALSE, hidden_by = $2, updated_at = now()
			  WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, eventUID, moderatorUID)
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
