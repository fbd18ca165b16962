package models

import "time"

// Genres — закрытый список жанров событий.
var Genres = []string{"goa", "psytrance", "dnb", "hardcore", "techno", "trance"}

// IsValidGenre проверяет, входит ли жанр в закрытый список.
func IsValidGenre(genre string) bool {
	for _, g := range Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// Comment представляет комментарий, встроенный в документ события.
type Comment struct {
	ID        string     `json:"id"`
	UserUID   string     `json:"user_id"`
	Username  string     `json:"username"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at"`
}

// Event представляет событие, созданное организатором.
//
// Списки Attendees, Interested и Comments хранятся внутри записи события
// (JSONB-колонки), как и в исходной документной модели.
type Event struct {
	UID          string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Genre        string    `json:"genre"`
	OrganizerUID string    `json:"organizer_id"`
	DateStart    time.Time `json:"date_start"`
	DateEnd      time.Time `json:"date_end"`
	Location     string    `json:"location"`
	Price        float64   `json:"price"`
	TicketURL    string    `json:"ticket_url"`
	Lineup       []string  `json:"lineup"`
	IsPublic     bool      `json:"is_public"`
	Attendees    []string  `json:"attendees"`  // UID участников
	Interested   []string  `json:"interested"` // UID заинтересованных
	Comments     []Comment `json:"comments"`
	HiddenBy     *string   `json:"hidden_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EventUpdate содержит разрешённый к изменению набор полей события.
// Нулевые указатели означают «поле не менять».
type EventUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Genre       *string    `json:"genre,omitempty"`
	DateStart   *time.Time `json:"date_start,omitempty"`
	DateEnd     *time.Time `json:"date_end,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	TicketURL   *string    `json:"ticket_url,omitempty"`
	Lineup      *[]string  `json:"lineup,omitempty"`
	IsPublic    *bool      `json:"is_public,omitempty"`
}

// EventFilter описывает фильтры и пагинацию списка событий.
type EventFilter struct {
	Genre    string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PerPage  int
}

// EventPage — страница списка событий с метаданными пагинации.
type EventPage struct {
	Events     []*Event `json:"events"`
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
	Total      int      `json:"total"`
	TotalPages int      `json:"total_pages"`
}
