// Package models содержит доменные структуры трекера рейвов:
// пользователи, инвайт-коды, события, тарифные планы, купоны,
// жалобы и тикеты поддержки. Структуры используются в бизнес-логике
// и при работе с хранилищем.
package models

import "time"

// Роли пользователей. Роль определяет разрешённые мутации.
const (
	RoleUser      = "user"
	RoleOrganizer = "organizer"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// IsStaff сообщает, относится ли роль к персоналу (модераторы и администраторы).
func IsStaff(role string) bool {
	return role == RoleModerator || role == RoleAdmin
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID              string     `json:"uid"`               // Уникальный идентификатор пользователя
	Email            string     `json:"email"`             // Электронная почта
	Username         string     `json:"username"`          // Имя пользователя (уникальное)
	PasswordHash     string     `json:"-"`                 // Хэш пароля пользователя
	Role             string     `json:"role"`              // Роль: user, organizer, moderator или admin
	SubscriptionPlan string     `json:"subscription_plan"` // Идентификатор текущего тарифного плана
	InviteCodes      []string   `json:"invite_codes_generated"`
	IsSuspended      bool       `json:"is_suspended"`
	IsBanned         bool       `json:"is_banned"`
	SuspendedAt      *time.Time `json:"suspended_at,omitempty"`
	BannedAt         *time.Time `json:"banned_at,omitempty"`
	SubscriptionEnd  *time.Time `json:"subscription_end,omitempty"` // Дата окончания оплаченного периода
	CreatedAt        time.Time  `json:"created_at"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
}

// PublicUser — безопасное представление пользователя для открытых ручек.
type PublicUser struct {
	UID              string    `json:"uid"`
	Username         string    `json:"username"`
	Role             string    `json:"role"`
	SubscriptionPlan string    `json:"subscription_plan"`
	CreatedAt        time.Time `json:"created_at"`
}

// Public возвращает представление пользователя без чувствительных полей.
func (u *User) Public() PublicUser {
	return PublicUser{
		UID:              u.UID,
		Username:         u.Username,
		Role:             u.Role,
		SubscriptionPlan: u.SubscriptionPlan,
		CreatedAt:        u.CreatedAt,
	}
}

// OrganizerRequest представляет заявку пользователя на роль организатора.
type OrganizerRequest struct {
	ID          int       `json:"id"`
	UserUID     string    `json:"user_uid"`
	CompanyName string    `json:"company_name"`
	Description string    `json:"description"`
	Experience  string    `json:"experience"`
	Status      string    `json:"status"` // pending, approved, rejected
	CreatedAt   time.Time `json:"created_at"`
}
