// Package upgrade реализует HTTP-обработчик смены тарифного плана.
package upgrade

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
	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/services/subscription"
)

// Request — входные данные смены тарифного плана
type Request struct {
	PlanID string `json:"plan_id" validate:"required"`
}

// Service описывает интерфейс бизнес-логики смены плана.
type Service interface {
	Upgrade(ctx context.Context, userUID, planID string) (*models.Plan, error)
}

// Handler обрабатывает запросы на смену тарифного плана.
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

// ServeHTTP обрабатывает HTTP-запрос на смену тарифного плана.
//
// @Summary Смена тарифного плана
// @Tags subscriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Идентификатор плана"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/subscriptions/upgrade [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.upgrade"

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

	plan, err := h.service.Upgrade(r.Context(), userUID, req.PlanID)
	switch {
	case errors.Is(err, subscription.ErrPlanNotFound):
		log.Error("plan not found", slog.String("plan", req.PlanID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	case errors.Is(err, subscription.ErrPlanInactive):
		log.Error("plan is not active", slog.String("plan", req.PlanID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("plan is not active"))
		return
	case err != nil:
		log.Error("failed to upgrade plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not upgrade plan"))
		return
	}

	log.Info("plan upgraded", slog.String("plan", req.PlanID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plan":    plan,
		"message": "subscription upgraded",
	}))
}
