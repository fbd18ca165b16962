package models

import "time"

// Типы целей жалобы.
var ReportTypes = []string{"event", "user", "comment", "organizer"}

// Причины жалоб.
var ReportReasons = []string{
	"inappropriate_content",
	"spam",
	"fake_event",
	"harassment",
	"copyright_violation",
	"fraud",
	"other",
}

// Статусы жалобы.
var ReportStatuses = []string{"pending", "investigating", "resolved", "dismissed"}

// Действия модерации.
var ModerationActions = []string{"warn_user", "suspend_user", "ban_user", "delete_content", "hide_content"}

// Contains сообщает, содержится ли значение в списке.
func Contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// TargetInfo — снимок минимального контекста цели жалобы на момент создания.
type TargetInfo struct {
	Title        string `json:"title,omitempty"`        // для событий
	OrganizerUID string `json:"organizer_id,omitempty"` // для событий
	Username     string `json:"username,omitempty"`     // для пользователей
	Email        string `json:"email,omitempty"`        // для пользователей
}

// ReporterInfo — сведения об авторе жалобы для очереди модерации.
type ReporterInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Report представляет жалобу пользователя.
type Report struct {
	UID            string        `json:"id"`
	ReporterUID    string        `json:"reporter_id"`
	ReportType     string        `json:"report_type"`
	TargetID       string        `json:"target_id"`
	Reason         string        `json:"reason"`
	Description    string        `json:"description"`
	Status         string        `json:"status"`
	TargetInfo     *TargetInfo   `json:"target_info,omitempty"`
	ReporterInfo   *ReporterInfo `json:"reporter_info,omitempty"`
	ModeratorUID   *string       `json:"moderator_id"`
	ModeratorNotes string        `json:"moderator_notes"`
	Resolution     *string       `json:"resolution"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// ReportUpdate содержит разрешённые к изменению поля жалобы.
type ReportUpdate struct {
	Status         *string `json:"status,omitempty"`
	ModeratorNotes *string `json:"moderator_notes,omitempty"`
	Resolution     *string `json:"resolution,omitempty"`
}

// ModerationLog — неизменяемая запись журнала действий модерации.
type ModerationLog struct {
	ID            int       `json:"id"`
	ModeratorUID  string    `json:"moderator_id"`
	ModeratorName string    `json:"moderator_name,omitempty"`
	Action        string    `json:"action"`
	TargetType    string    `json:"target_type"`
	TargetID      string    `json:"target_id"`
	ReportUID     *string   `json:"report_id,omitempty"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"timestamp"`
}

// ReportStats — счётчики жалоб по статусам и последние действия модерации.
type ReportStats struct {
	Pending       int              `json:"pending"`
	Investigating int              `json:"investigating"`
	Resolved      int              `json:"resolved"`
	Dismissed     int              `json:"dismissed"`
	Total         int              `json:"total"`
	RecentActions []*ModerationLog `json:"recent_actions"`
}
