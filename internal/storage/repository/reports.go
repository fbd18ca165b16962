package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

const reportColumns = `uid, reporter_uid, report_type, target_id, reason, description,
			      status, target_info, moderator_uid, moderator_notes, resolution,
			      created_at, updated_at`

func scanReport(row interface{ Scan(...any) error }) (*models.Report, error) {
	rep := &models.Report{}
	var targetInfo []byte
	var moderatorUID, resolution sql.NullString
	if err := row.Scan(&rep.UID, &rep.ReporterUID, &rep.ReportType, &rep.TargetID,
		&rep.Reason, &rep.Description, &rep.Status, &targetInfo,
		&moderatorUID, &rep.ModeratorNotes, &resolution,
		&rep.CreatedAt, &rep.UpdatedAt); err != nil {
		return nil, err
	}
	if len(targetInfo) > 0 {
		if err := unmarshalJSON(targetInfo, &rep.TargetInfo); err != nil {
			return nil, err
		}
	}
	if moderatorUID.Valid {
		rep.ModeratorUID = &moderatorUID.String
	}
	if resolution.Valid {
		rep.Resolution = &resolution.String
	}
	return rep, nil
}

// CreateReport сохраняет новую жалобу и возвращает её UID.
func (s *Storage) CreateReport(ctx context.Context, report models.Report) (string, error) {
	const op = "storage.CreateReport"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var targetInfo *string
	if report.TargetInfo != nil {
		data, err := marshalJSON(report.TargetInfo)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		targetInfo = &data
	}
	query := `INSERT INTO reports (reporter_uid, report_type, target_id, reason,
			  description, status, target_info)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid;`
	var newUID string
	if err := s.DB.QueryRowContext(ctx, query,
		report.ReporterUID, report.ReportType, report.TargetID, report.Reason,
		report.Description, report.Status, targetInfo).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetReport возвращает жалобу по UID.
func (s *Storage) GetReport(ctx context.Context, reportUID string) (*models.Report, error) {
	const op = "storage.GetReport"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + reportColumns + ` FROM reports WHERE uid = $1`
	rep, err := scanReport(s.DB.QueryRowContext(ctx, query, reportUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rep, nil
}

// ListReports возвращает жалобы, опционально фильтруя по статусу и типу.
// Свежие жалобы идут первыми.
func (s *Storage) ListReports(ctx context.Context, status, reportType string) ([]models.Report, error) {
	const op = "storage.ListReports"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + reportColumns + ` FROM reports
			  WHERE ($1 = '' OR status = $1)
			    AND ($2 = '' OR report_type = $2)
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, status, reportType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		reports = append(reports, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reports, nil
}

// UpdateReport обновляет статус, заметки и резолюцию жалобы.
func (s *Storage) UpdateReport(ctx context.Context, reportUID, moderatorUID string, upd models.ReportUpdate) error {
	const op = "storage.UpdateReport"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reports SET
			  status = COALESCE($3, status),
			  moderator_notes = COALESCE($4, moderator_notes),
			  resolution = COALESCE($5, resolution),
			  moderator_uid = $2,
			  updated_at = now()
			  WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, reportUID, moderatorUID,
		upd.Status, upd.ModeratorNotes, upd.Resolution)
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

// AddModerationLog записывает действие модератора.
func (s *Storage) AddModerationLog(ctx context.Context, entry models.ModerationLog) error {
	const op = "storage.AddModerationLog"
	query := `INSERT INTO moderation_logs (moderator_uid, action, target_type, target_id,
			  report_uid, reason)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.DB.ExecContext(ctx, query,
		entry.ModeratorUID, entry.Action, entry.TargetType, entry.TargetID,
		entry.ReportUID, entry.Reason); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RecentModerationLogs возвращает последние действия модераторов.
func (s *Storage) RecentModerationLogs(ctx context.Context, limit int) ([]models.ModerationLog, error) {
	const op = "storage.RecentModerationLogs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, moderator_uid, action, target_type, target_id, report_uid,
			  reason, created_at
			  FROM moderation_logs ORDER BY created_at DESC LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var logs []models.ModerationLog
	for rows.Next() {
		var entry models.ModerationLog
		var reportUID sql.NullString
		if err := rows.Scan(&entry.ID, &entry.ModeratorUID, &entry.Action,
			&entry.TargetType, &entry.TargetID, &reportUID,
			&entry.Reason, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if reportUID.Valid {
			entry.ReportUID = &reportUID.String
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return logs, nil
}

// CountReportsByStatus возвращает количество жалоб в разбивке по статусам.
func (s *Storage) CountReportsByStatus(ctx context.Context) (map[string]int, error) {
	const op = "storage.CountReportsByStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT status, COUNT(*) FROM reports GROUP BY status`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return counts, nil
}
