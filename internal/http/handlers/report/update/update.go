// Package update реализует HTTP-обработчик изменения жалобы модератором.
package update

import (
	"context"
	"encoding/json"
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
	"github.com/magabrotheeeer/rave-tracker/internal/services/report"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Request — изменяемые поля жалобы.
type Request struct {
	Status         *string `json:"status,omitempty"`
	ModeratorNotes *string `json:"moderator_notes,omitempty"`
	Resolution     *string `json:"resolution,omitempty"`
}

// Service описывает интерфейс бизнес-логики изменения жалоб.
type Service interface {
	Update(ctx context.Context, reportUID, moderatorUID string, upd models.ReportUpdate) error
}

// Handler обрабатывает запросы на изменение жалобы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP обрабатывает HTTP-запрос модератора на изменение жалобы.
//
// @Summary Изменение жалобы
// @Tags reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Идентификатор жалобы"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/reports/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	moderatorUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || moderatorUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	reportUID := chi.URLParam(r, "id")
	if reportUID == "" {
		log.Error("report id is empty")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("report id is required"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	upd := models.ReportUpdate{
		Status:         req.Status,
		ModeratorNotes: req.ModeratorNotes,
		Resolution:     req.Resolution,
	}

	err := h.service.Update(r.Context(), reportUID, moderatorUID, upd)
	switch {
	case errors.Is(err, report.ErrInvalidStatus):
		log.Error("invalid report status", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case errors.Is(err, repository.ErrNotFound):
		log.Error("report not found", slog.String("report", reportUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("report not found"))
		return
	case err != nil:
		log.Error("failed to update report", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update report"))
		return
	}

	log.Info("report updated", slog.String("report", reportUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":      reportUID,
		"message": "report updated",
	}))
}
