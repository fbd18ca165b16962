package report

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/rabbitmq"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateReport(ctx context.Context, report models.Report) (string, error) {
	args := m.Called(ctx, report)
	return args.String(0), args.Error(1)
}
func (m *RepoMock) GetReport(ctx context.Context, reportUID string) (*models.Report, error) {
	args := m.Called(ctx, reportUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}
func (m *RepoMock) ListReports(ctx context.Context, status, reportType string) ([]models.Report, error) {
	args := m.Called(ctx, status, reportType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Report), args.Error(1)
}
func (m *RepoMock) UpdateReport(ctx context.Context, reportUID, moderatorUID string, upd models.ReportUpdate) error {
	return m.Called(ctx, reportUID, moderatorUID, upd).Error(0)
}
func (m *RepoMock) AddModerationLog(ctx context.Context, entry models.ModerationLog) error {
	return m.Called(ctx, entry).Error(0)
}
func (m *RepoMock) RecentModerationLogs(ctx context.Context, limit int) ([]models.ModerationLog, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ModerationLog), args.Error(1)
}
func (m *RepoMock) CountReportsByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}
func (m *RepoMock) GetEvent(ctx context.Context, eventUID string) (*models.Event, error) {
	args := m.Called(ctx, eventUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}
func (m *RepoMock) DeleteEvent(ctx context.Context, eventUID string) error {
	return m.Called(ctx, eventUID).Error(0)
}
func (m *RepoMock) HideEvent(ctx context.Context, eventUID, moderatorUID string) error {
	return m.Called(ctx, eventUID, moderatorUID).Error(0)
}
func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) SetSuspended(ctx context.Context, userUID, moderatorUID string) error {
	return m.Called(ctx, userUID, moderatorUID).Error(0)
}
func (m *RepoMock) SetBanned(ctx context.Context, userUID, moderatorUID string) error {
	return m.Called(ctx, userUID, moderatorUID).Error(0)
}
func (m *RepoMock) AddUserModeration(ctx context.Context, userUID, action, reason, moderatorUID string, durationDays int) error {
	return m.Called(ctx, userUID, action, reason, moderatorUID, durationDays).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCreate(t *testing.T) {
	t.Run("жалоба на событие со снимком цели", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetEvent", mock.Anything, "e1").
			Return(&models.Event{UID: "e1", Title: "Dark Rave", OrganizerUID: "org-1"}, nil)
		repo.On("CreateReport", mock.Anything, mock.MatchedBy(func(r models.Report) bool {
			return r.Status == "pending" && r.TargetInfo != nil && r.TargetInfo.Title == "Dark Rave"
		})).Return("r1", nil)

		svc := NewReportService(repo, new(PublisherMock), newNoopLogger())
		uid, err := svc.Create(context.Background(), "u1", "event", "e1", "fake_event", "")

		assert.NoError(t, err)
		assert.Equal(t, "r1", uid)
	})

	t.Run("недопустимый тип", func(t *testing.T) {
		svc := NewReportService(new(RepoMock), new(PublisherMock), newNoopLogger())
		_, err := svc.Create(context.Background(), "u1", "playlist", "e1", "spam", "")
		assert.ErrorIs(t, err, ErrInvalidType)
	})

	t.Run("недопустимая причина", func(t *testing.T) {
		svc := NewReportService(new(RepoMock), new(PublisherMock), newNoopLogger())
		_, err := svc.Create(context.Background(), "u1", "event", "e1", "ugly", "")
		assert.ErrorIs(t, err, ErrInvalidReason)
	})

	t.Run("цель не найдена", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetEvent", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

		svc := NewReportService(repo, new(PublisherMock), newNoopLogger())
		_, err := svc.Create(context.Background(), "u1", "event", "missing", "spam", "")

		assert.ErrorIs(t, err, ErrTargetNotFound)
	})

	t.Run("жалоба на комментарий без проверки цели", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateReport", mock.Anything, mock.MatchedBy(func(r models.Report) bool {
			return r.TargetInfo == nil
		})).Return("r2", nil)

		svc := NewReportService(repo, new(PublisherMock), newNoopLogger())
		_, err := svc.Create(context.Background(), "u1", "comment", "c1", "harassment", "")

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "GetEvent", mock.Anything, mock.Anything)
	})
}

func TestExecuteAction(t *testing.T) {
	report := &models.Report{UID: "r1", ReportType: "user", TargetID: "u1"}
	target := &models.User{UID: "u1", Username: "troll", Email: "troll@example.com"}

	t.Run("бан пользователя с уведомлением", func(t *testing.T) {
		repo := new(RepoMock)
		pub := new(PublisherMock)
		repo.On("GetReport", mock.Anything, "r1").Return(report, nil)
		repo.On("GetUser", mock.Anything, "u1").Return(target, nil)
		repo.On("SetBanned", mock.Anything, "u1", "mod-1").Return(nil)
		repo.On("AddUserModeration", mock.Anything, "u1", "ban_user", "spam", "mod-1", 0).Return(nil)
		repo.On("AddModerationLog", mock.Anything, mock.Anything).Return(nil)
		repo.On("UpdateReport", mock.Anything, "r1", "mod-1", mock.MatchedBy(func(u models.ReportUpdate) bool {
			return u.Status != nil && *u.Status == "resolved"
		})).Return(nil)
		pub.On("Publish", rabbitmq.RoutingKeyModeration, mock.MatchedBy(func(n models.ModerationNotice) bool {
			return n.Email == "troll@example.com" && n.Action == "ban_user"
		})).Return(nil)

		svc := NewReportService(repo, pub, newNoopLogger())
		err := svc.ExecuteAction(context.Background(), "r1", "mod-1", "ban_user", "spam", 0)

		assert.NoError(t, err)
		pub.AssertExpectations(t)
	})

	t.Run("мера к организатору события", func(t *testing.T) {
		repo := new(RepoMock)
		pub := new(PublisherMock)
		eventReport := &models.Report{UID: "r2", ReportType: "event", TargetID: "e1"}
		repo.On("GetReport", mock.Anything, "r2").Return(eventReport, nil)
		repo.On("GetEvent", mock.Anything, "e1").
			Return(&models.Event{UID: "e1", OrganizerUID: "org-1"}, nil)
		repo.On("GetUser", mock.Anything, "org-1").
			Return(&models.User{UID: "org-1", Email: "org@example.com"}, nil)
		repo.On("SetSuspended", mock.Anything, "org-1", "mod-1").Return(nil)
		repo.On("AddUserModeration", mock.Anything, "org-1", "suspend_user", "fraud", "mod-1", 7).Return(nil)
		repo.On("AddModerationLog", mock.Anything, mock.Anything).Return(nil)
		repo.On("UpdateReport", mock.Anything, "r2", "mod-1", mock.Anything).Return(nil)
		pub.On("Publish", rabbitmq.RoutingKeyModeration, mock.Anything).Return(nil)

		svc := NewReportService(repo, pub, newNoopLogger())
		err := svc.ExecuteAction(context.Background(), "r2", "mod-1", "suspend_user", "fraud", 7)

		assert.NoError(t, err)
	})

	t.Run("удаление уже удалённого контента не ошибка", func(t *testing.T) {
		repo := new(RepoMock)
		eventReport := &models.Report{UID: "r3", ReportType: "event", TargetID: "e1"}
		repo.On("GetReport", mock.Anything, "r3").Return(eventReport, nil)
		repo.On("DeleteEvent", mock.Anything, "e1").Return(repository.ErrNotFound)
		repo.On("AddModerationLog", mock.Anything, mock.Anything).Return(nil)
		repo.On("UpdateReport", mock.Anything, "r3", "mod-1", mock.Anything).Return(nil)

		svc := NewReportService(repo, new(PublisherMock), newNoopLogger())
		err := svc.ExecuteAction(context.Background(), "r3", "mod-1", "delete_content", "spam", 0)

		assert.NoError(t, err)
	})

	t.Run("неизвестное действие", func(t *testing.T) {
		svc := NewReportService(new(RepoMock), new(PublisherMock), newNoopLogger())
		err := svc.ExecuteAction(context.Background(), "r1", "mod-1", "evaporate", "spam", 0)
		assert.ErrorIs(t, err, ErrInvalidAction)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("смена статуса пишется в журнал", func(t *testing.T) {
		repo := new(RepoMock)
		status := "investigating"
		repo.On("UpdateReport", mock.Anything, "r1", "mod-1", mock.Anything).Return(nil)
		repo.On("AddModerationLog", mock.Anything, mock.MatchedBy(func(e models.ModerationLog) bool {
			return e.Action == "status_investigating" && e.TargetType == "report"
		})).Return(nil)

		svc := NewReportService(repo, new(PublisherMock), newNoopLogger())
		err := svc.Update(context.Background(), "r1", "mod-1", models.ReportUpdate{Status: &status})

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("недопустимый статус", func(t *testing.T) {
		status := "forgotten"
		svc := NewReportService(new(RepoMock), new(PublisherMock), newNoopLogger())
		err := svc.Update(context.Background(), "r1", "mod-1", models.ReportUpdate{Status: &status})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestStats(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CountReportsByStatus", mock.Anything).
		Return(map[string]int{"pending": 3, "resolved": 2}, nil)
	repo.On("RecentModerationLogs", mock.Anything, 10).
		Return([]models.ModerationLog{{ModeratorUID: "mod-1", Action: "ban_user"}}, nil)
	repo.On("GetUser", mock.Anything, "mod-1").
		Return(&models.User{UID: "mod-1", Username: "brigadir"}, nil)

	svc := NewReportService(repo, new(PublisherMock), newNoopLogger())
	stats, err := svc.Stats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 3, stats.Pending)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, "brigadir", stats.RecentActions[0].ModeratorName)
}
