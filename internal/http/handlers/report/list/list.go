// Package list реализует HTTP-обработчик очереди жалоб для модераторов.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

// Service описывает интерфейс бизнес-логики очереди жалоб.
type Service interface {
	List(ctx context.Context, status, reportType string, limit, offset int) ([]models.Report, int, error)
}

// Handler обрабатывает запросы списка жалоб.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP обрабатывает HTTP-запрос очереди жалоб с фильтрами.
//
// @Summary Очередь жалоб
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Param status query string false "Фильтр по статусу"
// @Param report_type query string false "Фильтр по типу"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Router /api/reports [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	status := r.URL.Query().Get("status")
	reportType := r.URL.Query().Get("report_type")

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

	reports, total, err := h.service.List(r.Context(), status, reportType, limit, offset)
	if err != nil {
		log.Error("failed to list reports", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list reports"))
		return
	}

	log.Info("reports listed", slog.Int("count", len(reports)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"reports": reports,
		"total":   total,
	}))
}
