// Package useinvite реализует HTTP-обработчик атомарного расходования инвайт-кода.
package useinvite

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
	"github.com/magabrotheeeer/rave-tracker/internal/services/auth"
)

// Request — входные данные расходования инвайт-кода
type Request struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

// Service описывает интерфейс бизнес-логики расходования инвайт-кодов.
type Service interface {
	UseInvite(ctx context.Context, code, userUID string) error
}

// Handler обрабатывает запросы на расходование инвайт-кода.
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

// ServeHTTP обрабатывает HTTP-запрос на расходование инвайт-кода.
//
// @Summary Расходование инвайт-кода
// @Tags invites
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Инвайт-код"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /api/use-invite [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invite.use"

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

	err := h.service.UseInvite(r.Context(), req.InviteCode, userUID)
	switch {
	case errors.Is(err, auth.ErrInviteInvalid) || errors.Is(err, auth.ErrInviteUsed) ||
		errors.Is(err, auth.ErrInviteExpired) || errors.Is(err, auth.ErrInviteLimitReached):
		log.Error("invite rejected", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case err != nil:
		log.Error("failed to use invite", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not use invite code"))
		return
	}

	log.Info("invite code used")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "invite code accepted",
	}))
}
