// Package read реализует HTTP-обработчик получения жалобы по идентификатору.
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

// Service описывает интерфейс бизнес-логики получения жалобы.
type Service interface {
	Get(ctx context.Context, reportUID string) (*models.Report, error)
}

// Handler обрабатывает запросы получения жалобы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP обрабатывает HTTP-запрос получения жалобы по идентификатору.
//
// @Summary Получение жалобы
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Param id path string true "Идентификатор жалобы"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /api/reports/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	reportUID := chi.URLParam(r, "id")
	if reportUID == "" {
		log.Error("report id is empty")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("report id is required"))
		return
	}

	result, err := h.service.Get(r.Context(), reportUID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Error("report not found", slog.String("report", reportUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("report not found"))
		return
	case err != nil:
		log.Error("failed to get report", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get report"))
		return
	}

	log.Info("report found", slog.String("report", reportUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"report": result,
	}))
}
