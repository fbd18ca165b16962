// Package stats реализует HTTP-обработчик статистики службы поддержки.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

// Service описывает интерфейс бизнес-логики статистики поддержки.
type Service interface {
	Stats(ctx context.Context) (*models.SupportStats, error)
}

// Handler обрабатывает запросы статистики поддержки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP обрабатывает HTTP-запрос статистики обращений.
//
// @Summary Статистика поддержки
// @Tags support
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/support/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result, err := h.service.Stats(r.Context())
	if err != nil {
		log.Error("failed to collect support stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not collect stats"))
		return
	}

	log.Info("support stats collected")
	render.JSON(w, r, response.OKWithData(result))
}
