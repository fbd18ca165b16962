package event

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateEvent(ctx context.Context, event models.Event) (string, error) {
	args := m.Called(ctx, event)
	return args.String(0), args.Error(1)
}
func (m *RepoMock) GetEvent(ctx context.Context, eventUID string) (*models.Event, error) {
	args := m.Called(ctx, eventUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}
func (m *RepoMock) ListAllEvents(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}
func (m *RepoMock) UpdateEvent(ctx context.Context, eventUID string, upd models.EventUpdate) error {
	return m.Called(ctx, eventUID, upd).Error(0)
}
func (m *RepoMock) DeleteEvent(ctx context.Context, eventUID string) error {
	return m.Called(ctx, eventUID).Error(0)
}
func (m *RepoMock) CountEventsByOrganizer(ctx context.Context, organizerUID string) (int, error) {
	args := m.Called(ctx, organizerUID)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) UpdateAttendees(ctx context.Context, eventUID string, attendees []string) error {
	return m.Called(ctx, eventUID, attendees).Error(0)
}
func (m *RepoMock) UpdateInterested(ctx context.Context, eventUID string, interested []string) error {
	return m.Called(ctx, eventUID, interested).Error(0)
}
func (m *RepoMock) UpdateComments(ctx context.Context, eventUID string, comments []models.Comment) error {
	return m.Called(ctx, eventUID, comments).Error(0)
}

type PlansMock struct{ mock.Mock }

func (m *PlansMock) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *PlansMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// NoopCache — кеш, который всегда промахивается.
type NoopCache struct{}

func (NoopCache) Get(_ string, _ any) (bool, error)          { return false, nil }
func (NoopCache) Set(_ string, _ any, _ time.Duration) error { return nil }
func (NoopCache) Invalidate(_ string) error                  { return nil }
func (NoopCache) InvalidatePrefix(_ string) error            { return nil }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(repo *RepoMock, plans *PlansMock) *EventService {
	return NewEventService(repo, plans, NoopCache{}, newNoopLogger())
}

func TestCreate(t *testing.T) {
	now := time.Now().UTC()
	valid := models.Event{
		Title:     "Open Air",
		Genre:     "techno",
		DateStart: now,
		DateEnd:   now.Add(8 * time.Hour),
	}
	freeUser := &models.User{UID: "org-1", SubscriptionPlan: "free"}
	freePlan := &models.Plan{ID: "free", EventsLimit: 2}

	t.Run("успешная публикация", func(t *testing.T) {
		repo := new(RepoMock)
		plans := new(PlansMock)
		plans.On("GetUser", mock.Anything, "org-1").Return(freeUser, nil)
		plans.On("GetPlan", mock.Anything, "free").Return(freePlan, nil)
		repo.On("CountEventsByOrganizer", mock.Anything, "org-1").Return(1, nil)
		repo.On("CreateEvent", mock.Anything, mock.MatchedBy(func(e models.Event) bool {
			return e.OrganizerUID == "org-1" && e.Title == "Open Air"
		})).Return("event-1", nil)

		svc := newService(repo, plans)
		uid, err := svc.Create(context.Background(), "org-1", valid)

		assert.NoError(t, err)
		assert.Equal(t, "event-1", uid)
	})

	t.Run("неизвестный жанр", func(t *testing.T) {
		ev := valid
		ev.Genre = "jazz"
		svc := newService(new(RepoMock), new(PlansMock))
		_, err := svc.Create(context.Background(), "org-1", ev)
		assert.ErrorIs(t, err, ErrInvalidGenre)
	})

	t.Run("дата окончания раньше начала", func(t *testing.T) {
		ev := valid
		ev.DateEnd = now.Add(-time.Hour)
		svc := newService(new(RepoMock), new(PlansMock))
		_, err := svc.Create(context.Background(), "org-1", ev)
		assert.ErrorIs(t, err, ErrDatesInvalid)
	})

	t.Run("исчерпан лимит тарифа", func(t *testing.T) {
		repo := new(RepoMock)
		plans := new(PlansMock)
		plans.On("GetUser", mock.Anything, "org-1").Return(freeUser, nil)
		plans.On("GetPlan", mock.Anything, "free").Return(freePlan, nil)
		repo.On("CountEventsByOrganizer", mock.Anything, "org-1").Return(2, nil)

		svc := newService(repo, plans)
		_, err := svc.Create(context.Background(), "org-1", valid)

		assert.ErrorIs(t, err, ErrEventsLimit)
	})

	t.Run("безлимитный тариф не считает события", func(t *testing.T) {
		repo := new(RepoMock)
		plans := new(PlansMock)
		proUser := &models.User{UID: "org-1", SubscriptionPlan: "unlimited"}
		plans.On("GetUser", mock.Anything, "org-1").Return(proUser, nil)
		plans.On("GetPlan", mock.Anything, "unlimited").
			Return(&models.Plan{ID: "unlimited", EventsLimit: models.UnlimitedEvents}, nil)
		repo.On("CreateEvent", mock.Anything, mock.Anything).Return("event-2", nil)

		svc := newService(repo, plans)
		_, err := svc.Create(context.Background(), "org-1", valid)

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "CountEventsByOrganizer", mock.Anything, mock.Anything)
	})
}

func TestListVisibility(t *testing.T) {
	events := []models.Event{
		{UID: "e1", Title: "Public", Genre: "techno", IsPublic: true},
		{UID: "e2", Title: "Hidden", Genre: "techno", IsPublic: false, OrganizerUID: "org-1"},
	}

	tests := []struct {
		name       string
		viewerUID  string
		viewerRole string
		wantTotal  int
	}{
		{"аноним видит только публичные", "", "", 1},
		{"организатор видит свои скрытые", "org-1", "organizer", 2},
		{"чужой пользователь не видит скрытые", "other", "user", 1},
		{"модератор видит все", "mod-1", "moderator", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("ListAllEvents", mock.Anything).Return(events, nil)

			svc := newService(repo, new(PlansMock))
			page, err := svc.List(context.Background(), models.EventFilter{}, tt.viewerUID, tt.viewerRole)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantTotal, page.Total)
		})
	}
}

func TestListFilters(t *testing.T) {
	events := []models.Event{
		{UID: "e1", Title: "Goa Party", Genre: "goa", IsPublic: true},
		{UID: "e2", Title: "Techno Bunker", Genre: "techno", IsPublic: true},
		{UID: "e3", Title: "Forest Goa", Genre: "goa", IsPublic: true, Location: "forest"},
	}
	repo := new(RepoMock)
	repo.On("ListAllEvents", mock.Anything).Return(events, nil)
	svc := newService(repo, new(PlansMock))

	page, err := svc.List(context.Background(), models.EventFilter{Genre: "goa"}, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = svc.List(context.Background(), models.EventFilter{Search: "bunker"}, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	page, err = svc.List(context.Background(), models.EventFilter{PerPage: 2}, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(page.Events))
	assert.Equal(t, 2, page.TotalPages)
}

func TestUpdateOwnership(t *testing.T) {
	event := &models.Event{UID: "e1", OrganizerUID: "org-1", Genre: "techno"}

	t.Run("чужой пользователь получает отказ", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetEvent", mock.Anything, "e1").Return(event, nil)

		svc := newService(repo, new(PlansMock))
		err := svc.Update(context.Background(), "e1", "intruder", "user", models.EventUpdate{})

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("модератор может менять чужое событие", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetEvent", mock.Anything, "e1").Return(event, nil)
		repo.On("UpdateEvent", mock.Anything, "e1", mock.Anything).Return(nil)

		svc := newService(repo, new(PlansMock))
		err := svc.Update(context.Background(), "e1", "mod-1", "moderator", models.EventUpdate{})

		assert.NoError(t, err)
	})

	t.Run("несуществующее событие", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetEvent", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

		svc := newService(repo, new(PlansMock))
		err := svc.Update(context.Background(), "missing", "org-1", "organizer", models.EventUpdate{})

		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestToggleInterest(t *testing.T) {
	t.Run("добавление отметки", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetEvent", mock.Anything, "e1").
			Return(&models.Event{UID: "e1", Interested: []string{"u1"}}, nil)
		repo.On("UpdateInterested", mock.Anything, "e1", []string{"u1", "u2"}).Return(nil)

		svc := newService(repo, new(PlansMock))
		action, count, err := svc.ToggleInterest(context.Background(), "e1", "u2")

		assert.NoError(t, err)
		assert.Equal(t, ActionAdded, action)
		assert.Equal(t, 2, count)
	})

	t.Run("повторный вызов убирает отметку", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetEvent", mock.Anything, "e1").
			Return(&models.Event{UID: "e1", Interested: []string{"u1", "u2"}}, nil)
		repo.On("UpdateInterested", mock.Anything, "e1", []string{"u1"}).Return(nil)

		svc := newService(repo, new(PlansMock))
		action, count, err := svc.ToggleInterest(context.Background(), "e1", "u2")

		assert.NoError(t, err)
		assert.Equal(t, ActionRemoved, action)
		assert.Equal(t, 1, count)
	})
}

func TestAddComment(t *testing.T) {
	t.Run("успешное добавление", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetEvent", mock.Anything, "e1").
			Return(&models.Event{UID: "e1"}, nil)
		repo.On("UpdateComments", mock.Anything, "e1", mock.MatchedBy(func(cs []models.Comment) bool {
			return len(cs) == 1 && cs[0].Comment == "Огонь!" && cs[0].ID != ""
		})).Return(nil)

		svc := newService(repo, new(PlansMock))
		comment, err := svc.AddComment(context.Background(), "e1", "u1", "raver", "Огонь!")

		assert.NoError(t, err)
		assert.Equal(t, "raver", comment.Username)
	})

	t.Run("пустой комментарий", func(t *testing.T) {
		svc := newService(new(RepoMock), new(PlansMock))
		_, err := svc.AddComment(context.Background(), "e1", "u1", "raver", "   ")
		assert.ErrorIs(t, err, ErrEmptyComment)
	})
}
