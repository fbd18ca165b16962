package models

import (
	"strings"
	"time"
)

// Категории тикетов поддержки.
var TicketCategories = []string{
	"account",
	"events",
	"subscriptions",
	"technical",
	"billing",
	"feature_request",
	"bug_report",
	"other",
}

// Приоритеты тикетов.
var TicketPriorities = []string{"low", "normal", "high", "urgent"}

// Статусы тикетов.
var TicketStatuses = []string{"open", "answered", "waiting", "resolved", "closed"}

// TicketUserInfo — снимок данных автора тикета на момент создания.
type TicketUserInfo struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	SubscriptionPlan string `json:"subscription_plan"`
}

// TicketResponse — ответ во встроенном треде тикета.
type TicketResponse struct {
	UserUID         string    `json:"user_id"`
	Username        string    `json:"username"`
	Role            string    `json:"role"`
	Message         string    `json:"message"`
	IsStaffResponse bool      `json:"is_staff_response"`
	CreatedAt       time.Time `json:"created_at"`
}

// SupportTicket представляет тикет поддержки со встроенным тредом ответов.
type SupportTicket struct {
	UID           string           `json:"id"`
	UserUID       string           `json:"user_id"`
	Subject       string           `json:"subject"`
	Message       string           `json:"message"`
	Category      string           `json:"category"`
	Priority      string           `json:"priority"`
	Status        string           `json:"status"`
	UserInfo      *TicketUserInfo  `json:"user_info,omitempty"`
	Responses     []TicketResponse `json:"responses"`
	AssignedTo    *string          `json:"assigned_to"`
	InternalNotes string           `json:"internal_notes,omitempty"`
	ResolvedAt    *time.Time       `json:"resolved_at,omitempty"`
	ResolvedBy    *string          `json:"resolved_by,omitempty"`
	AssignedAt    *time.Time       `json:"assigned_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// TicketNumber возвращает короткий человекочитаемый номер тикета.
func (t *SupportTicket) TicketNumber() string {
	uid := t.UID
	if len(uid) > 8 {
		uid = uid[:8]
	}
	return "ST-" + strings.ToUpper(uid)
}

// SupportStats — счётчики тикетов по статусам и категориям.
type SupportStats struct {
	ByStatus      map[string]int   `json:"status_stats"`
	ByCategory    map[string]int   `json:"category_stats"`
	RecentTickets []*SupportTicket `json:"recent_tickets"`
}
