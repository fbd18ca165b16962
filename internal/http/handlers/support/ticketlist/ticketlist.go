// Package ticketlist реализует HTTP-обработчик списка обращений в поддержку.
package ticketlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/rave-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

// Service описывает интерфейс бизнес-логики списка обращений.
type Service interface {
	ListTickets(ctx context.Context, actorUID, actorRole, status, category string, limit, offset int) ([]models.SupportTicket, int, error)
}

// Handler обрабатывает запросы списка обращений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP обрабатывает HTTP-запрос списка обращений. Обычному пользователю
// возвращаются только его собственные обращения, сотрудникам — все.
//
// @Summary Список обращений
// @Tags support
// @Security BearerAuth
// @Produce json
// @Param status query string false "Фильтр по статусу"
// @Param category query string false "Фильтр по категории"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Router /api/support/tickets [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.ticketlist"

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

	status := r.URL.Query().Get("status")
	category := r.URL.Query().Get("category")

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}

	tickets, total, err := h.service.ListTickets(r.Context(), actorUID, actorRole, status, category, limit, offset)
	if err != nil {
		log.Error("failed to list tickets", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tickets"))
		return
	}

	log.Info("tickets listed", slog.Int("count", len(tickets)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"tickets": tickets,
		"total":   total,
	}))
}
