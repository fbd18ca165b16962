package models

import "time"

// InviteCode представляет инвайт-код, открывающий регистрацию.
//
// Для одноразовых кодов (MaxUses == 1) используется флаг Used и поле UsedBy.
// Для многоразовых кодов счётчик CurrentUses не превышает MaxUses;
// MaxUses == 0 означает отсутствие ограничения по количеству использований.
type InviteCode struct {
	ID          int        `json:"id"`
	Code        string     `json:"code"`
	MaxUses     int        `json:"max_uses"`
	CurrentUses int        `json:"current_uses"`
	Used        bool       `json:"used"`
	UsedBy      *string    `json:"used_by,omitempty"`      // UID пользователя для одноразового кода
	LastUsedBy  *string    `json:"last_used_by,omitempty"` // UID последнего использовавшего для многоразового
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`   // nil — бессрочный код
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}
