// Package action реализует HTTP-обработчик применения мер модерации.
package action

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/rave-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/services/report"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Request — входные данные меры модерации по жалобе.
type Request struct {
	Action       string `json:"action" validate:"required"`
	Reason       string `json:"reason" validate:"required"`
	DurationDays int    `json:"duration_days"`
}

// Service описывает интерфейс бизнес-логики мер модерации.
type Service interface {
	ExecuteAction(ctx context.Context, reportUID, moderatorUID, action, reason string, durationDays int) error
}

// Handler обрабатывает запросы на применение мер модерации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает HTTP-запрос модератора на применение меры по жалобе.
//
// @Summary Мера модерации по жалобе
// @Tags reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Идентификатор жалобы"
// @Param request body Request true "Мера и основание"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/reports/{id}/action [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.action"

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

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err := h.service.ExecuteAction(r.Context(), reportUID, moderatorUID, req.Action, req.Reason, req.DurationDays)
	switch {
	case errors.Is(err, report.ErrInvalidAction):
		log.Error("invalid moderation action", slog.String("action", req.Action))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case errors.Is(err, repository.ErrNotFound):
		log.Error("report not found", slog.String("report", reportUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("report not found"))
		return
	case errors.Is(err, report.ErrTargetNotFound):
		log.Error("action target not found", slog.String("report", reportUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("action target not found"))
		return
	case err != nil:
		log.Error("failed to execute moderation action", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not execute action"))
		return
	}

	log.Info("moderation action executed",
		slog.String("report", reportUID), slog.String("action", req.Action))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":      reportUID,
		"action":  req.Action,
		"message": "action executed",
	}))
}
