// Package read реализует HTTP-обработчик получения события по UID.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики чтения события.
type Service interface {
	Get(ctx context.Context, eventUID string) (*models.Event, error)
}

// Handler обрабатывает запросы на получение события.
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

// ServeHTTP обрабатывает HTTP-запрос на чтение события.
//
// @Summary Событие по идентификатору
// @Tags events
// @Produce json
// @Param id path string true "UID события"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /api/events/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	eventUID := chi.URLParam(r, "id")

	event, err := h.service.Get(r.Context(), eventUID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Error("event not found")
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("event not found"))
		return
	case err != nil:
		log.Error("failed to read event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read event"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"event": event,
	}))
}
