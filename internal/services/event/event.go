// Package event содержит бизнес-логику афиши: публикация событий,
// фильтрация и пагинация, отметки интереса и участия, комментарии.
package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

// Ошибки бизнес-уровня, по которым обработчики выбирают HTTP-статус.
var (
	ErrForbidden    = errors.New("not allowed")
	ErrInvalidGenre = errors.New("invalid genre")
	ErrEventsLimit  = errors.New("event limit reached for current plan, upgrade your subscription")
	ErrEmptyComment = errors.New("comment text is required")
	ErrDatesInvalid = errors.New("date_end must not be earlier than date_start")
)

// Действия отметок участия и интереса.
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// EventRepository определяет методы для работы с событиями в хранилище.
type EventRepository interface {
	CreateEvent(ctx context.Context, event models.Event) (string, error)
	GetEvent(ctx context.Context, eventUID string) (*models.Event, error)
	ListAllEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, eventUID string, upd models.EventUpdate) error
	DeleteEvent(ctx context.Context, eventUID string) error
	CountEventsByOrganizer(ctx context.Context, organizerUID string) (int, error)
	UpdateAttendees(ctx context.Context, eventUID string, attendees []string) error
	UpdateInterested(ctx context.Context, eventUID string, interested []string) error
	UpdateComments(ctx context.Context, eventUID string, comments []models.Comment) error
}

// PlanRepository возвращает тарифные планы для проверки лимитов.
type PlanRepository interface {
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
	InvalidatePrefix(prefix string) error
}

// EventService реализует бизнес-логику работы с афишей.
type EventService struct {
	repo  EventRepository
	plans PlanRepository
	cache Cache
	log   *slog.Logger
}

// NewEventService создает новый экземпляр EventService.
func NewEventService(repo EventRepository, plans PlanRepository, cache Cache, log *slog.Logger) *EventService {
	return &EventService{
		repo:  repo,
		plans: plans,
		cache: cache,
		log:   log,
	}
}

// List возвращает страницу событий по фильтру. Скрытые события видят
// только их организатор и персонал; список сортирован по дате начала.
func (s *EventService) List(ctx context.Context, filter models.EventFilter, viewerUID, viewerRole string) (*models.EventPage, error) {
	// Видимость зависит от зрителя, поэтому кешируется только анонимная выдача.
	var cacheKey string
	if viewerUID == "" {
		cacheKey = fmt.Sprintf("events:list:%s:%s:%d:%d", filter.Genre, filter.Search, filter.Page, filter.PerPage)
		var cached *models.EventPage
		found, err := s.cache.Get(cacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read event list from cache", slog.String("key", cacheKey), slog.Any("err", err))
		}
		if found && filter.DateFrom == nil && filter.DateTo == nil {
			return cached, nil
		}
	}

	events, err := s.repo.ListAllEvents(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Event, 0, len(events))
	for i := range events {
		ev := &events[i]
		if !s.visible(ev, viewerUID, viewerRole) {
			continue
		}
		if filter.Genre != "" && ev.Genre != filter.Genre {
			continue
		}
		if filter.Search != "" && !matchesSearch(ev, filter.Search) {
			continue
		}
		if filter.DateFrom != nil && ev.DateStart.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && ev.DateStart.After(*filter.DateTo) {
			continue
		}
		filtered = append(filtered, ev)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 20
	}

	total := len(filtered)
	totalPages := (total + perPage - 1) / perPage
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	result := &models.EventPage{
		Events:     filtered[start:end],
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
	if cacheKey != "" && filter.DateFrom == nil && filter.DateTo == nil {
		if err := s.cache.Set(cacheKey, result, 5*time.Minute); err != nil {
			s.log.Warn("failed to cache event list", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}
	return result, nil
}

func (s *EventService) visible(ev *models.Event, viewerUID, viewerRole string) bool {
	if ev.IsPublic {
		return true
	}
	if viewerUID == "" {
		return false
	}
	return ev.OrganizerUID == viewerUID || models.IsStaff(viewerRole)
}

func matchesSearch(ev *models.Event, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(ev.Title), needle) ||
		strings.Contains(strings.ToLower(ev.Description), needle) ||
		strings.Contains(strings.ToLower(ev.Location), needle)
}

// Get возвращает событие по UID, используя кеш или репозиторий.
func (s *EventService) Get(ctx context.Context, eventUID string) (*models.Event, error) {
	var result *models.Event
	cacheKey := fmt.Sprintf("event:%s", eventUID)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read event from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.GetEvent(ctx, eventUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache event", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// Create публикует новое событие с проверкой жанра, дат и лимита тарифа.
func (s *EventService) Create(ctx context.Context, organizerUID string, event models.Event) (string, error) {
	if !models.IsValidGenre(event.Genre) {
		return "", ErrInvalidGenre
	}
	if event.DateEnd.Before(event.DateStart) {
		return "", ErrDatesInvalid
	}

	if err := s.checkEventsLimit(ctx, organizerUID); err != nil {
		return "", err
	}

	event.OrganizerUID = organizerUID
	uid, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return "", err
	}

	s.log.Info("created new event", slog.String("uid", uid), slog.String("organizer", organizerUID))
	s.invalidateLists()
	return uid, nil
}

func (s *EventService) checkEventsLimit(ctx context.Context, organizerUID string) error {
	user, err := s.plans.GetUser(ctx, organizerUID)
	if err != nil {
		return err
	}
	limit := 2 // дефолт бесплатного тарифа, если план не найден
	plan, err := s.plans.GetPlan(ctx, user.SubscriptionPlan)
	if err == nil {
		limit = plan.EventsLimit
	}
	if limit == models.UnlimitedEvents {
		return nil
	}

	count, err := s.repo.CountEventsByOrganizer(ctx, organizerUID)
	if err != nil {
		return err
	}
	if count >= limit {
		return ErrEventsLimit
	}
	return nil
}

// Update меняет разрешённые поля события. Право на изменение имеют
// организатор события и персонал.
func (s *EventService) Update(ctx context.Context, eventUID, actorUID, actorRole string, upd models.EventUpdate) error {
	event, err := s.repo.GetEvent(ctx, eventUID)
	if err != nil {
		return err
	}
	if event.OrganizerUID != actorUID && !models.IsStaff(actorRole) {
		return ErrForbidden
	}
	if upd.Genre != nil && !models.IsValidGenre(*upd.Genre) {
		return ErrInvalidGenre
	}

	if err := s.repo.UpdateEvent(ctx, eventUID, upd); err != nil {
		return err
	}
	s.invalidateEvent(eventUID)
	return nil
}

// Delete удаляет событие. Право на удаление имеют организатор и персонал.
func (s *EventService) Delete(ctx context.Context, eventUID, actorUID, actorRole string) error {
	event, err := s.repo.GetEvent(ctx, eventUID)
	if err != nil {
		return err
	}
	if event.OrganizerUID != actorUID && !models.IsStaff(actorRole) {
		return ErrForbidden
	}

	if err := s.repo.DeleteEvent(ctx, eventUID); err != nil {
		return err
	}
	s.invalidateEvent(eventUID)
	return nil
}

// ToggleInterest добавляет или убирает пользователя из заинтересованных.
// Возвращает выполненное действие и новое количество.
func (s *EventService) ToggleInterest(ctx context.Context, eventUID, userUID string) (string, int, error) {
	event, err := s.repo.GetEvent(ctx, eventUID)
	if err != nil {
		return "", 0, err
	}
	action, list := toggleMembership(event.Interested, userUID)
	if err := s.repo.UpdateInterested(ctx, eventUID, list); err != nil {
		return "", 0, err
	}
	s.invalidateEvent(eventUID)
	return action, len(list), nil
}

// ToggleAttend добавляет или убирает пользователя из идущих на событие.
func (s *EventService) ToggleAttend(ctx context.Context, eventUID, userUID string) (string, int, error) {
	event, err := s.repo.GetEvent(ctx, eventUID)
	if err != nil {
		return "", 0, err
	}
	action, list := toggleMembership(event.Attendees, userUID)
	if err := s.repo.UpdateAttendees(ctx, eventUID, list); err != nil {
		return "", 0, err
	}
	s.invalidateEvent(eventUID)
	return action, len(list), nil
}

func toggleMembership(list []string, userUID string) (string, []string) {
	for i, uid := range list {
		if uid == userUID {
			return ActionRemoved, append(list[:i], list[i+1:]...)
		}
	}
	return ActionAdded, append(list, userUID)
}

// AddComment добавляет комментарий к событию.
func (s *EventService) AddComment(ctx context.Context, eventUID, userUID, username, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}

	event, err := s.repo.GetEvent(ctx, eventUID)
	if err != nil {
		return nil, err
	}
	comment := models.Comment{
		ID:        uuid.NewString(),
		UserUID:   userUID,
		Username:  username,
		Comment:   text,
		CreatedAt: time.Now().UTC(),
	}
	comments := append(event.Comments, comment)
	if err := s.repo.UpdateComments(ctx, eventUID, comments); err != nil {
		return nil, err
	}
	s.invalidateEvent(eventUID)
	return &comment, nil
}

func (s *EventService) invalidateEvent(eventUID string) {
	cacheKey := fmt.Sprintf("event:%s", eventUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove event from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	s.invalidateLists()
}

func (s *EventService) invalidateLists() {
	if err := s.cache.InvalidatePrefix("events:list:"); err != nil {
		s.log.Warn("failed to invalidate event lists cache", slog.Any("err", err))
	}
}
