// Package update реализует HTTP-обработчик изменения события.
//
// Разрешён ограниченный набор полей; неуказанные поля не меняются.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/rave-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/services/event"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Request — изменяемые поля события; nil означает «не менять»
type Request struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Genre       *string   `json:"genre"`
	DateStart   *string   `json:"date_start"`
	DateEnd     *string   `json:"date_end"`
	Location    *string   `json:"location"`
	Price       *float64  `json:"price"`
	TicketURL   *string   `json:"ticket_url"`
	Lineup      *[]string `json:"lineup"`
	IsPublic    *bool     `json:"is_public"`
}

// Service описывает интерфейс бизнес-логики изменения событий.
type Service interface {
	Update(ctx context.Context, eventUID, actorUID, actorRole string, upd models.EventUpdate) error
}

// Handler обрабатывает запросы на изменение события.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP обрабатывает HTTP-запрос на изменение события.
//
// @Summary Изменение события
// @Tags events
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "UID события"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/events/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	eventUID := chi.URLParam(r, "id")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	upd := models.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Location:    req.Location,
		Price:       req.Price,
		TicketURL:   req.TicketURL,
		Lineup:      req.Lineup,
		IsPublic:    req.IsPublic,
	}
	if req.DateStart != nil {
		parsed, err := time.Parse(time.RFC3339, *req.DateStart)
		if err != nil {
			log.Error("failed to parse date_start", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid date_start format, expected RFC3339"))
			return
		}
		upd.DateStart = &parsed
	}
	if req.DateEnd != nil {
		parsed, err := time.Parse(time.RFC3339, *req.DateEnd)
		if err != nil {
			log.Error("failed to parse date_end", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid date_end format, expected RFC3339"))
			return
		}
		upd.DateEnd = &parsed
	}

	err := h.service.Update(r.Context(), eventUID, userUID, role, upd)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Error("event not found")
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("event not found"))
		return
	case errors.Is(err, event.ErrForbidden):
		log.Error("update not allowed")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("not allowed to update this event"))
		return
	case errors.Is(err, event.ErrInvalidGenre):
		log.Error("invalid genre")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid genre"))
		return
	case err != nil:
		log.Error("failed to update event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update event"))
		return
	}

	log.Info("event updated", slog.String("uid", eventUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"uid":     eventUID,
		"message": "event updated",
	}))
}
