// Package couponapply реализует HTTP-обработчик применения купона.
package couponapply

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
	"github.com/magabrotheeeer/rave-tracker/internal/services/subscription"
)

// Request — входные данные применения купона.
type Request struct {
	Code string `json:"code" validate:"required"`
}

// Service описывает интерфейс бизнес-логики применения купонов.
type Service interface {
	ApplyCoupon(ctx context.Context, code, userUID string) (string, error)
}

// Handler обрабатывает запросы на применение купона.
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

// ServeHTTP обрабатывает HTTP-запрос на применение купона к подписке.
//
// @Summary Применение купона
// @Tags subscriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Код купона"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /api/subscriptions/coupon/apply [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.couponapply"

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

	benefit, err := h.service.ApplyCoupon(r.Context(), req.Code, userUID)
	switch {
	case errors.Is(err, subscription.ErrCouponInvalid),
		errors.Is(err, subscription.ErrCouponInactive),
		errors.Is(err, subscription.ErrCouponExpired),
		errors.Is(err, subscription.ErrCouponLimit),
		errors.Is(err, subscription.ErrCouponAlreadyUsed),
		errors.Is(err, subscription.ErrCouponType):
		log.Error("coupon rejected", slog.String("code", req.Code), sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case err != nil:
		log.Error("failed to apply coupon", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not apply coupon"))
		return
	}

	log.Info("coupon applied", slog.String("code", req.Code))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"benefit": benefit,
		"message": "coupon applied",
	}))
}
