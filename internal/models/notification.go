package models

import "time"

// ModerationNotice — сообщение брокера о действии модерации над пользователем.
type ModerationNotice struct {
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketNotice — сообщение брокера о новом тикете поддержки.
type TicketNotice struct {
	TicketUID    string    `json:"ticket_id"`
	TicketNumber string    `json:"ticket_number"`
	Subject      string    `json:"subject"`
	Category     string    `json:"category"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	CreatedAt    time.Time `json:"created_at"`
}
