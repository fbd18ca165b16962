// Package stats реализует HTTP-обработчик статистики модерации.
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

// Service описывает интерфейс бизнес-логики статистики модерации.
type Service interface {
	Stats(ctx context.Context) (*models.ReportStats, error)
}

// Handler обрабатывает запросы статистики модерации.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP обрабатывает HTTP-запрос статистики жалоб и последних действий.
//
// @Summary Статистика модерации
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/reports/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result, err := h.service.Stats(r.Context())
	if err != nil {
		log.Error("failed to collect moderation stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not collect stats"))
		return
	}

	log.Info("moderation stats collected", slog.Int("total", result.Total))
	render.JSON(w, r, response.OKWithData(result))
}
