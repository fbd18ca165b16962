// Package plancreate реализует HTTP-обработчик создания тарифного плана.
package plancreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/services/subscription"
)

// Request — входные данные создания тарифного плана.
type Request struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Price       float64  `json:"price" validate:"gte=0"`
	EventsLimit int      `json:"events_limit"`
	Features    []string `json:"features"`
	IsActive    *bool    `json:"is_active"`
}

// Service описывает интерфейс бизнес-логики управления планами.
type Service interface {
	CreatePlan(ctx context.Context, plan models.Plan) error
}

// Handler обрабатывает запросы на создание тарифного плана.
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

// ServeHTTP обрабатывает HTTP-запрос администратора на создание плана.
//
// @Summary Создание тарифного плана
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Данные плана"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/admin/plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.plancreate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	plan := models.Plan{
		ID:          req.ID,
		Name:        req.Name,
		Price:       req.Price,
		EventsLimit: req.EventsLimit,
		Features:    req.Features,
		IsActive:    isActive,
	}

	err := h.service.CreatePlan(r.Context(), plan)
	switch {
	case errors.Is(err, subscription.ErrPlanExists):
		log.Error("plan already exists", slog.String("plan", req.ID))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("plan already exists"))
		return
	case err != nil:
		log.Error("failed to create plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create plan"))
		return
	}

	log.Info("plan created", slog.String("plan", req.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":      req.ID,
		"message": "plan created",
	}))
}
