// Package report содержит бизнес-логику жалоб и действий модерации.
package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/rabbitmq"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Ошибки бизнес-уровня, по которым обработчики выбирают HTTP-статус.
var (
	ErrInvalidType    = errors.New("invalid report type")
	ErrInvalidReason  = errors.New("invalid report reason")
	ErrInvalidStatus  = errors.New("invalid report status")
	ErrInvalidAction  = errors.New("invalid moderation action")
	ErrTargetNotFound = errors.New("report target not found")
)

// ReportRepository определяет методы хранилища для жалоб и журнала модерации.
type ReportRepository interface {
	CreateReport(ctx context.Context, report models.Report) (string, error)
	GetReport(ctx context.Context, reportUID string) (*models.Report, error)
	ListReports(ctx context.Context, status, reportType string) ([]models.Report, error)
	UpdateReport(ctx context.Context, reportUID, moderatorUID string, upd models.ReportUpdate) error
	AddModerationLog(ctx context.Context, entry models.ModerationLog) error
	RecentModerationLogs(ctx context.Context, limit int) ([]models.ModerationLog, error)
	CountReportsByStatus(ctx context.Context) (map[string]int, error)

	GetEvent(ctx context.Context, eventUID string) (*models.Event, error)
	DeleteEvent(ctx context.Context, eventUID string) error
	HideEvent(ctx context.Context, eventUID, moderatorUID string) error
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	SetSuspended(ctx context.Context, userUID, moderatorUID string) error
	SetBanned(ctx context.Context, userUID, moderatorUID string) error
	AddUserModeration(ctx context.Context, userUID, action, reason, moderatorUID string, durationDays int) error
}

// Publisher публикует уведомления в брокер сообщений.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// ReportService реализует бизнес-логику модерации.
type ReportService struct {
	repo      ReportRepository
	publisher Publisher
	log       *slog.Logger
}

// NewReportService создает новый экземпляр ReportService.
func NewReportService(repo ReportRepository, publisher Publisher, log *slog.Logger) *ReportService {
	return &ReportService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Create регистрирует жалобу, проверив цель и сняв снимок её контекста.
func (s *ReportService) Create(ctx context.Context, reporterUID, reportType, targetID, reason, description string) (string, error) {
	if !models.Contains(models.ReportTypes, reportType) {
		return "", ErrInvalidType
	}
	if !models.Contains(models.ReportReasons, reason) {
		return "", ErrInvalidReason
	}

	targetInfo, err := s.snapshotTarget(ctx, reportType, targetID)
	if err != nil {
		return "", err
	}

	report := models.Report{
		ReporterUID: reporterUID,
		ReportType:  reportType,
		TargetID:    targetID,
		Reason:      reason,
		Description: description,
		Status:      "pending",
		TargetInfo:  targetInfo,
	}
	uid, err := s.repo.CreateReport(ctx, report)
	if err != nil {
		return "", err
	}
	s.log.Info("report created", slog.String("uid", uid), slog.String("type", reportType))
	return uid, nil
}

func (s *ReportService) snapshotTarget(ctx context.Context, reportType, targetID string) (*models.TargetInfo, error) {
	switch reportType {
	case "event":
		event, err := s.repo.GetEvent(ctx, targetID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTargetNotFound
		}
		if err != nil {
			return nil, err
		}
		return &models.TargetInfo{Title: event.Title, OrganizerUID: event.OrganizerUID}, nil
	case "user", "organizer":
		user, err := s.repo.GetUser(ctx, targetID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTargetNotFound
		}
		if err != nil {
			return nil, err
		}
		return &models.TargetInfo{Username: user.Username, Email: user.Email}, nil
	default:
		// Для комментариев цель не проверяется: комментарий живёт
		// внутри события и может быть удалён вместе с ним.
		return nil, nil
	}
}

// List возвращает жалобы с фильтрами и пагинацией, дополняя их
// сведениями об авторах.
func (s *ReportService) List(ctx context.Context, status, reportType string, limit, offset int) ([]models.Report, int, error) {
	reports, err := s.repo.ListReports(ctx, status, reportType)
	if err != nil {
		return nil, 0, err
	}
	total := len(reports)

	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	page := reports[offset:end]

	for i := range page {
		reporter, err := s.repo.GetUser(ctx, page[i].ReporterUID)
		if err != nil {
			continue
		}
		page[i].ReporterInfo = &models.ReporterInfo{
			Username: reporter.Username,
			Email:    reporter.Email,
		}
	}
	return page, total, nil
}

// Get возвращает жалобу по UID.
func (s *ReportService) Get(ctx context.Context, reportUID string) (*models.Report, error) {
	return s.repo.GetReport(ctx, reportUID)
}

// Update меняет статус и заметки жалобы с записью в журнал модерации.
func (s *ReportService) Update(ctx context.Context, reportUID, moderatorUID string, upd models.ReportUpdate) error {
	if upd.Status != nil && !models.Contains(models.ReportStatuses, *upd.Status) {
		return ErrInvalidStatus
	}

	if err := s.repo.UpdateReport(ctx, reportUID, moderatorUID, upd); err != nil {
		return err
	}

	if upd.Status != nil {
		entry := models.ModerationLog{
			ModeratorUID: moderatorUID,
			Action:       "status_" + *upd.Status,
			TargetType:   "report",
			TargetID:     reportUID,
			ReportUID:    &reportUID,
		}
		if err := s.repo.AddModerationLog(ctx, entry); err != nil {
			s.log.Warn("failed to write moderation log", slog.Any("err", err))
		}
	}
	return nil
}

// ExecuteAction применяет действие модерации к цели жалобы: меры к
// пользователю или к контенту. Жалоба помечается решённой, действие
// попадает в журнал, пользователю уходит уведомление.
func (s *ReportService) ExecuteAction(ctx context.Context, reportUID, moderatorUID, action, reason string, durationDays int) error {
	if !models.Contains(models.ModerationActions, action) {
		return ErrInvalidAction
	}

	report, err := s.repo.GetReport(ctx, reportUID)
	if err != nil {
		return err
	}

	var noticedUser *models.User
	switch action {
	case "warn_user", "suspend_user", "ban_user":
		user, err := s.resolveTargetUser(ctx, report)
		if err != nil {
			return err
		}
		switch action {
		case "suspend_user":
			if err := s.repo.SetSuspended(ctx, user.UID, moderatorUID); err != nil {
				return err
			}
		case "ban_user":
			if err := s.repo.SetBanned(ctx, user.UID, moderatorUID); err != nil {
				return err
			}
		}
		if err := s.repo.AddUserModeration(ctx, user.UID, action, reason, moderatorUID, durationDays); err != nil {
			return err
		}
		noticedUser = user
	case "delete_content":
		if err := s.repo.DeleteEvent(ctx, report.TargetID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	case "hide_content":
		if err := s.repo.HideEvent(ctx, report.TargetID, moderatorUID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}

	entry := models.ModerationLog{
		ModeratorUID: moderatorUID,
		Action:       action,
		TargetType:   report.ReportType,
		TargetID:     report.TargetID,
		ReportUID:    &reportUID,
		Reason:       reason,
	}
	if err := s.repo.AddModerationLog(ctx, entry); err != nil {
		s.log.Warn("failed to write moderation log", slog.Any("err", err))
	}

	resolved := "resolved"
	resolution := "action: " + action
	upd := models.ReportUpdate{Status: &resolved, Resolution: &resolution}
	if err := s.repo.UpdateReport(ctx, reportUID, moderatorUID, upd); err != nil {
		return err
	}

	if noticedUser != nil {
		notice := models.ModerationNotice{
			Email:     noticedUser.Email,
			Username:  noticedUser.Username,
			Action:    action,
			Reason:    reason,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.publisher.Publish(rabbitmq.RoutingKeyModeration, notice); err != nil {
			s.log.Error("failed to publish moderation notice", slog.Any("err", err))
		}
	}

	s.log.Info("moderation action executed",
		slog.String("report", reportUID), slog.String("action", action))
	return nil
}

// resolveTargetUser находит пользователя, к которому применяется мера:
// напрямую либо через организатора события.
func (s *ReportService) resolveTargetUser(ctx context.Context, report *models.Report) (*models.User, error) {
	switch report.ReportType {
	case "user", "organizer":
		user, err := s.repo.GetUser(ctx, report.TargetID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTargetNotFound
		}
		return user, err
	case "event":
		event, err := s.repo.GetEvent(ctx, report.TargetID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTargetNotFound
		}
		if err != nil {
			return nil, err
		}
		user, err := s.repo.GetUser(ctx, event.OrganizerUID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTargetNotFound
		}
		return user, err
	default:
		return nil, ErrTargetNotFound
	}
}

// Stats возвращает счётчики жалоб по статусам и последние действия
// модерации с именами модераторов.
func (s *ReportService) Stats(ctx context.Context) (*models.ReportStats, error) {
	counts, err := s.repo.CountReportsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	logs, err := s.repo.RecentModerationLogs(ctx, 10)
	if err != nil {
		return nil, err
	}
	recent := make([]*models.ModerationLog, 0, len(logs))
	for i := range logs {
		if moderator, err := s.repo.GetUser(ctx, logs[i].ModeratorUID); err == nil {
			logs[i].ModeratorName = moderator.Username
		}
		recent = append(recent, &logs[i])
	}

	stats := &models.ReportStats{
		Pending:       counts["pending"],
		Investigating: counts["investigating"],
		Resolved:      counts["resolved"],
		Dismissed:     counts["dismissed"],
		RecentActions: recent,
	}
	stats.Total = stats.Pending + stats.Investigating + stats.Resolved + stats.Dismissed
	return stats, nil
}
