// Package ticketread реализует HTTP-обработчик получения обращения.
package ticketread

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
	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/services/support"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики получения обращений.
type Service interface {
	GetTicket(ctx context.Context, ticketUID, actorUID, actorRole string) (*models.SupportTicket, error)
}

// Handler обрабатывает запросы получения обращения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP обрабатывает HTTP-запрос получения обращения. Доступ имеют
// автор обращения и сотрудники.
//
// @Summary Получение обращения
// @Tags support
// @Security BearerAuth
// @Produce json
// @Param id path string true "Идентификатор обращения"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/support/tickets/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.ticketread"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actorUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || actorUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}
	actorRole, _ := r.Context().Value(middlewarectx.Role).(string)

	ticketUID := chi.URLParam(r, "id")
	if ticketUID == "" {
		log.Error("ticket id is empty")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("ticket id is required"))
		return
	}

	ticket, err := h.service.GetTicket(r.Context(), ticketUID, actorUID, actorRole)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Error("ticket not found", slog.String("ticket", ticketUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("ticket not found"))
		return
	case errors.Is(err, support.ErrAccessDenied):
		log.Error("access to ticket denied", slog.String("ticket", ticketUID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	case err != nil:
		log.Error("failed to get ticket", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get ticket"))
		return
	}

	log.Info("ticket found", slog.String("ticket", ticketUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"ticket": ticket,
	}))
}
