// Package remove реализует HTTP-обработчик удаления события.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/rave-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/services/event"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики удаления событий.
type Service interface {
	Delete(ctx context.Context, eventUID, actorUID, actorRole string) error
}

// Handler обрабатывает запросы на удаление события.
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

// ServeHTTP обрабатывает HTTP-запрос на удаление события.
//
// @Summary Удаление события
// @Tags events
// @Security BearerAuth
// @Produce json
// @Param id path string true "UID события"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/events/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	eventUID := chi.URLParam(r, "id")

	err := h.service.Delete(r.Context(), eventUID, userUID, role)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Error("event not found")
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("event not found"))
		return
	case errors.Is(err, event.ErrForbidden):
		log.Error("delete not allowed")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("not allowed to delete this event"))
		return
	case err != nil:
		log.Error("failed to delete event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete event"))
		return
	}

	log.Info("event deleted", slog.String("uid", eventUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"uid":     eventUID,
		"message": "event deleted",
	}))
}
