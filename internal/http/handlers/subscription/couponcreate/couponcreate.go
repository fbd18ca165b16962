// Package couponcreate реализует HTTP-обработчик создания купона.
package couponcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/rave-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/services/subscription"
)

// Request — входные данные создания купона.
type Request struct {
	Code          string  `json:"code" validate:"required"`
	CouponType    string  `json:"coupon_type" validate:"required,oneof=free_months plan_upgrade discount"`
	Description   string  `json:"description"`
	MaxUses       int     `json:"max_uses"`
	Months        int     `json:"months"`
	TargetPlan    string  `json:"target_plan"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
	ExpiresAt     string  `json:"expires_at"`
}

// Service описывает интерфейс бизнес-логики управления купонами.
type Service interface {
	CreateCoupon(ctx context.Context, coupon models.Coupon) error
}

// Handler обрабатывает запросы на создание купона.
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

// ServeHTTP обрабатывает HTTP-запрос администратора на создание купона.
//
// @Summary Создание купона
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Данные купона"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/admin/coupons [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.couponcreate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	adminUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

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

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			log.Error("invalid expires_at", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid expires_at, expected RFC3339"))
			return
		}
		expiresAt = &parsed
	}

	coupon := models.Coupon{
		Code:          req.Code,
		CouponType:    req.CouponType,
		Description:   req.Description,
		IsActive:      true,
		MaxUses:       req.MaxUses,
		UsedBy:        []string{},
		Months:        req.Months,
		TargetPlan:    req.TargetPlan,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ExpiresAt:     expiresAt,
		CreatedBy:     adminUID,
	}

	err := h.service.CreateCoupon(r.Context(), coupon)
	switch {
	case errors.Is(err, subscription.ErrCouponExists):
		log.Error("coupon already exists", slog.String("code", req.Code))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("coupon already exists"))
		return
	case err != nil:
		log.Error("failed to create coupon", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create coupon"))
		return
	}

	log.Info("coupon created", slog.String("code", req.Code))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"code":    req.Code,
		"message": "coupon created",
	}))
}
