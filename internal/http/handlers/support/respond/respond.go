// Package respond реализует HTTP-обработчик ответа в обращении поддержки.
package respond

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
	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/services/support"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Request — входные данные ответа в обращении.
type Request struct {
	Message string `json:"message" validate:"required"`
}

// Service описывает интерфейс бизнес-логики переписки в обращениях.
type Service interface {
	AddResponse(ctx context.Context, ticketUID, actorUID, actorUsername, actorRole, message string) (*models.TicketResponse, error)
}

// Handler обрабатывает запросы на добавление ответа.
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

// ServeHTTP обрабатывает HTTP-запрос на добавление ответа в обращение.
//
// @Summary Ответ в обращении
// @Tags support
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Идентификатор обращения"
// @Param request body Request true "Текст ответа"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/support/tickets/{id}/respond [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.respond"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actorUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || actorUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}
	actorUsername, _ := r.Context().Value(middlewarectx.User).(string)
	actorRole, _ := r.Context().Value(middlewarectx.Role).(string)

	ticketUID := chi.URLParam(r, "id")
	if ticketUID == "" {
		log.Error("ticket id is empty")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("ticket id is required"))
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

	resp, err := h.service.AddResponse(r.Context(), ticketUID, actorUID, actorUsername, actorRole, req.Message)
	switch {
	case errors.Is(err, support.ErrEmptyMessage):
		log.Error("empty response message")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case errors.Is(err, repository.ErrNotFound):
		log.Error("ticket not found", slog.String("ticket", ticketUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("ticket not found"))
		return
	case errors.Is(err, support.ErrAccessDenied):
		log.Error("access to ticket denied", slog.String("ticket", ticketUID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	case err != nil:
		log.Error("failed to add response", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not add response"))
		return
	}

	log.Info("response added", slog.String("ticket", ticketUID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"response": resp,
	}))
}
