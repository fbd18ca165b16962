// Package create реализует HTTP-обработчик публикации нового события.
//
// Handler декодирует тело запроса, валидирует обязательные поля и жанр,
// разбирает даты в формате RFC3339 и вызывает бизнес-логику с проверкой
// лимита тарифного плана организатора.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/rave-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/services/event"
)

// Request — входные данные для публикации события
type Request struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Genre       string   `json:"genre" validate:"required"`
	DateStart   string   `json:"date_start" validate:"required"`
	DateEnd     string   `json:"date_end"`
	Location    string   `json:"location" validate:"required"`
	Price       float64  `json:"price"`
	TicketURL   string   `json:"ticket_url"`
	Lineup      []string `json:"lineup"`
	IsPublic    *bool    `json:"is_public"`
}

// Service описывает интерфейс бизнес-логики публикации событий.
type Service interface {
	Create(ctx context.Context, organizerUID string, event models.Event) (string, error)
}

// Handler обрабатывает запросы на публикацию события.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает HTTP-запрос на публикацию события.
//
// @Summary Публикация события
// @Tags events
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Данные события"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /api/events [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	dateStart, err := time.Parse(time.RFC3339, req.DateStart)
	if err != nil {
		log.Error("failed to parse date_start", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid date_start format, expected RFC3339"))
		return
	}
	dateEnd := dateStart
	if req.DateEnd != "" {
		dateEnd, err = time.Parse(time.RFC3339, req.DateEnd)
		if err != nil {
			log.Error("failed to parse date_end", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid date_end format, expected RFC3339"))
			return
		}
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	newEvent := models.Event{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		DateStart:   dateStart,
		DateEnd:     dateEnd,
		Location:    req.Location,
		Price:       req.Price,
		TicketURL:   req.TicketURL,
		Lineup:      req.Lineup,
		IsPublic:    isPublic,
	}

	uid, err := h.service.Create(r.Context(), userUID, newEvent)
	switch {
	case errors.Is(err, event.ErrInvalidGenre):
		log.Error("invalid genre", slog.String("genre", req.Genre))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid genre"))
		return
	case errors.Is(err, event.ErrDatesInvalid):
		log.Error("invalid dates")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(event.ErrDatesInvalid.Error()))
		return
	case errors.Is(err, event.ErrEventsLimit):
		log.Error("events limit reached")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(event.ErrEventsLimit.Error()))
		return
	case err != nil:
		log.Error("failed to create event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create event"))
		return
	}

	log.Info("event created", slog.String("uid", uid))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"uid":   uid,
		"title": req.Title,
	}))
}
