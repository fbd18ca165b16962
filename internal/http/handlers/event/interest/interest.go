// Package interest реализует HTTP-обработчик отметки «интересно».
// Повторный запрос снимает отметку.
package interest

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
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики отметок интереса.
type Service interface {
	ToggleInterest(ctx context.Context, eventUID, userUID string) (string, int, error)
}

// Handler обрабатывает запросы на отметку «интересно».
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

// ServeHTTP обрабатывает HTTP-запрос на отметку «интересно».
//
// @Summary Отметка «интересно»
// @Tags events
// @Security BearerAuth
// @Produce json
// @Param id path string true "UID события"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /api/events/{id}/interest [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.interest"

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
	eventUID := chi.URLParam(r, "id")

	action, count, err := h.service.ToggleInterest(r.Context(), eventUID, userUID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Error("event not found")
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("event not found"))
		return
	case err != nil:
		log.Error("failed to toggle interest", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update interest"))
		return
	}

	log.Info("interest toggled", slog.String("action", action))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"action":           action,
		"interested_count": count,
	}))
}
