// Package support содержит бизнес-логику тикетов поддержки:
// создание, тред ответов, статусы, назначение и статистика.
package support

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/rabbitmq"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Ошибки бизнес-уровня, по которым обработчики выбирают HTTP-статус.
var (
	ErrAccessDenied    = errors.New("access denied")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrEmptyMessage    = errors.New("message is required")
	ErrNotStaff        = errors.New("assignee must be a staff member")
)

// TicketRepository определяет методы хранилища для тикетов поддержки.
type TicketRepository interface {
	CreateTicket(ctx context.Context, ticket models.SupportTicket) (string, error)
	GetTicket(ctx context.Context, ticketUID string) (*models.SupportTicket, error)
	ListTicketsByUser(ctx context.Context, userUID string) ([]models.SupportTicket, error)
	ListTickets(ctx context.Context, status, category string) ([]models.SupportTicket, error)
	RecentTickets(ctx context.Context, limit int) ([]models.SupportTicket, error)
	UpdateTicketResponses(ctx context.Context, ticketUID string, responses []models.TicketResponse, status string) error
	UpdateTicketStatus(ctx context.Context, ticketUID, status, staffUID, internalNotes string) error
	AssignTicket(ctx context.Context, ticketUID, staffUID string) error
	CountTicketsByStatus(ctx context.Context) (map[string]int, error)
	CountTicketsByCategory(ctx context.Context) (map[string]int, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Publisher публикует уведомления в брокер сообщений.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// SupportService реализует бизнес-логику тикетов поддержки.
type SupportService struct {
	repo      TicketRepository
	publisher Publisher
	log       *slog.Logger
}

// NewSupportService создает новый экземпляр SupportService.
func NewSupportService(repo TicketRepository, publisher Publisher, log *slog.Logger) *SupportService {
	return &SupportService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// CreateTicket регистрирует тикет со снимком данных автора
// и отправляет уведомление в брокер.
func (s *SupportService) CreateTicket(ctx context.Context, userUID, subject, message, category, priority string) (*models.SupportTicket, error) {
	if !models.Contains(models.TicketCategories, category) {
		return nil, ErrInvalidCategory
	}
	if !models.Contains(models.TicketPriorities, priority) {
		priority = "normal"
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	ticket := models.SupportTicket{
		UserUID:  userUID,
		Subject:  subject,
		Message:  message,
		Category: category,
		Priority: priority,
		Status:   "open",
		UserInfo: &models.TicketUserInfo{
			Username:         user.Username,
			Email:            user.Email,
			SubscriptionPlan: user.SubscriptionPlan,
		},
	}
	uid, err := s.repo.CreateTicket(ctx, ticket)
	if err != nil {
		return nil, err
	}
	ticket.UID = uid
	ticket.CreatedAt = time.Now().UTC()

	notice := models.TicketNotice{
		TicketUID:    uid,
		TicketNumber: ticket.TicketNumber(),
		Subject:      subject,
		Category:     category,
		Email:        user.Email,
		Username:     user.Username,
		CreatedAt:    ticket.CreatedAt,
	}
	if err := s.publisher.Publish(rabbitmq.RoutingKeySupport, notice); err != nil {
		s.log.Error("failed to publish ticket notice", slog.Any("err", err))
	}

	s.log.Info("support ticket created",
		slog.String("uid", uid), slog.String("number", ticket.TicketNumber()))
	return &ticket, nil
}

// ListTickets возвращает тикеты: пользователю — собственные,
// персоналу — все с фильтрами; с пагинацией по limit/offset.
func (s *SupportService) ListTickets(ctx context.Context, actorUID, actorRole, status, category string, limit, offset int) ([]models.SupportTicket, int, error) {
	var tickets []models.SupportTicket
	var err error
	if models.IsStaff(actorRole) {
		tickets, err = s.repo.ListTickets(ctx, status, category)
	} else {
		tickets, err = s.repo.ListTicketsByUser(ctx, actorUID)
		if err == nil && status != "" {
			filtered := tickets[:0]
			for _, t := range tickets {
				if t.Status == status {
					filtered = append(filtered, t)
				}
			}
			tickets = filtered
		}
	}
	if err != nil {
		return nil, 0, err
	}

	total := len(tickets)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return tickets[offset:end], total, nil
}

// GetTicket возвращает тикет автору или персоналу.
func (s *SupportService) GetTicket(ctx context.Context, ticketUID, actorUID, actorRole string) (*models.SupportTicket, error) {
	ticket, err := s.repo.GetTicket(ctx, ticketUID)
	if err != nil {
		return nil, err
	}
	if ticket.UserUID != actorUID && !models.IsStaff(actorRole) {
		return nil, ErrAccessDenied
	}
	return ticket, nil
}

// AddResponse добавляет ответ в тред тикета. Ответ персонала переводит
// тикет в статус "answered" и закрепляет его за ответившим.
func (s *SupportService) AddResponse(ctx context.Context, ticketUID, actorUID, actorUsername, actorRole, message string) (*models.TicketResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	ticket, err := s.repo.GetTicket(ctx, ticketUID)
	if err != nil {
		return nil, err
	}
	isStaff := models.IsStaff(actorRole)
	if ticket.UserUID != actorUID && !isStaff {
		return nil, ErrAccessDenied
	}

	response := models.TicketResponse{
		UserUID:         actorUID,
		Username:        actorUsername,
		Role:            actorRole,
		Message:         message,
		IsStaffResponse: isStaff,
		CreatedAt:       time.Now().UTC(),
	}
	responses := append(ticket.Responses, response)

	status := ticket.Status
	if isStaff {
		status = "answered"
	} else if ticket.Status == "answered" {
		status = "waiting"
	}
	if err := s.repo.UpdateTicketResponses(ctx, ticketUID, responses, status); err != nil {
		return nil, err
	}
	if isStaff && ticket.AssignedTo == nil {
		if err := s.repo.AssignTicket(ctx, ticketUID, actorUID); err != nil {
			s.log.Warn("failed to assign ticket on response", slog.Any("err", err))
		}
	}
	return &response, nil
}

// UpdateStatus меняет статус тикета (операция персонала).
func (s *SupportService) UpdateStatus(ctx context.Context, ticketUID, status, staffUID, internalNotes string) error {
	if !models.Contains(models.TicketStatuses, status) {
		return ErrInvalidStatus
	}
	return s.repo.UpdateTicketStatus(ctx, ticketUID, status, staffUID, internalNotes)
}

// Assign закрепляет тикет за сотрудником поддержки.
func (s *SupportService) Assign(ctx context.Context, ticketUID, assigneeUID string) error {
	assignee, err := s.repo.GetUser(ctx, assigneeUID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotStaff
	}
	if err != nil {
		return err
	}
	if !models.IsStaff(assignee.Role) {
		return ErrNotStaff
	}
	return s.repo.AssignTicket(ctx, ticketUID, assigneeUID)
}

// Stats возвращает счётчики тикетов по статусам и категориям
// и пять последних тикетов.
func (s *SupportService) Stats(ctx context.Context) (*models.SupportStats, error) {
	byStatus, err := s.repo.CountTicketsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.repo.CountTicketsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	tickets, err := s.repo.RecentTickets(ctx, 5)
	if err != nil {
		return nil, err
	}
	recent := make([]*models.SupportTicket, 0, len(tickets))
	for i := range tickets {
		recent = append(recent, &tickets[i])
	}

	return &models.SupportStats{
		ByStatus:      byStatus,
		ByCategory:    byCategory,
		RecentTickets: recent,
	}, nil
}

// Categories возвращает статический каталог категорий тикетов.
func (s *SupportService) Categories() []string {
	return models.TicketCategories
}
