// Package validateinvite реализует HTTP-обработчик проверки инвайт-кода
// без его расходования.
package validateinvite

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
	"github.com/magabrotheeeer/rave-tracker/internal/services/auth"
)

// Request — входные данные проверки инвайт-кода
type Request struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

// Service описывает интерфейс бизнес-логики проверки инвайт-кодов.
type Service interface {
	ValidateInvite(ctx context.Context, code string) (*models.InviteCode, error)
}

// Handler обрабатывает запросы на проверку инвайт-кода.
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

// ServeHTTP обрабатывает HTTP-запрос на проверку инвайт-кода.
//
// @Summary Проверка инвайт-кода
// @Tags invites
// @Accept json
// @Produce json
// @Param request body Request true "Инвайт-код"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /api/validate-invite [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invite.validate"

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

	invite, err := h.service.ValidateInvite(r.Context(), req.InviteCode)
	switch {
	case errors.Is(err, auth.ErrInviteInvalid) || errors.Is(err, auth.ErrInviteUsed) ||
		errors.Is(err, auth.ErrInviteExpired) || errors.Is(err, auth.ErrInviteLimitReached):
		log.Info("invite rejected", slog.String("reason", err.Error()))
		render.JSON(w, r, response.OKWithData(map[string]any{
			"valid":   false,
			"message": err.Error(),
		}))
		return
	case err != nil:
		log.Error("failed to validate invite", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not validate invite code"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"valid":        true,
		"max_uses":     invite.MaxUses,
		"current_uses": invite.CurrentUses,
		"expires_at":   invite.ExpiresAt,
	}))
}
