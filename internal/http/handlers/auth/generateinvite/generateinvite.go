// Package generateinvite реализует HTTP-обработчик создания инвайт-кода.
package generateinvite

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/rave-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/services/auth"
)

// Service описывает интерфейс бизнес-логики инвайт-кодов.
type Service interface {
	GenerateInvite(ctx context.Context, userUID string) (*models.InviteCode, error)
}

// Handler обрабатывает запросы на создание инвайт-кода.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP обрабатывает HTTP-запрос на создание инвайт-кода.
//
// @Summary Создание инвайт-кода
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 201 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /auth/generate-invite [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.generateinvite"

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

	invite, err := h.service.GenerateInvite(r.Context(), userUID)
	switch {
	case errors.Is(err, auth.ErrInviteLimit):
		log.Error("invite limit reached")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("invite code limit reached"))
		return
	case err != nil:
		log.Error("failed to generate invite", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not generate invite code"))
		return
	}

	log.Info("invite code generated")
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"code":       invite.Code,
		"max_uses":   invite.MaxUses,
		"expires_at": invite.ExpiresAt,
	}))
}
