// Package create реализует HTTP-обработчик подачи жалобы.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/rave-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/services/report"
)

// Request — входные данные для подачи жалобы.
type Request struct {
	ReportType  string `json:"report_type" validate:"required,oneof=event user organizer comment"`
	TargetID    string `json:"target_id" validate:"required"`
	Reason      string `json:"reason" validate:"required"`
	Description string `json:"description"`
}

// Service описывает интерфейс бизнес-логики подачи жалоб.
type Service interface {
	Create(ctx context.Context, reporterUID, reportType, targetID, reason, description string) (string, error)
}

// Handler обрабатывает запросы на подачу жалобы.
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

// ServeHTTP обрабатывает HTTP-запрос на подачу жалобы.
//
// @Summary Подача жалобы
// @Tags reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Данные жалобы"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/reports [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	reporterUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || reporterUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
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

	uid, err := h.service.Create(r.Context(), reporterUID, req.ReportType, req.TargetID, req.Reason, req.Description)
	switch {
	case errors.Is(err, report.ErrInvalidType), errors.Is(err, report.ErrInvalidReason):
		log.Error("invalid report payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case errors.Is(err, report.ErrTargetNotFound):
		log.Error("report target not found", slog.String("target", req.TargetID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("report target not found"))
		return
	case err != nil:
		log.Error("failed to create report", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create report"))
		return
	}

	log.Info("report created", slog.String("report", uid))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":      uid,
		"status":  "pending",
		"message": "report submitted",
	}))
}
