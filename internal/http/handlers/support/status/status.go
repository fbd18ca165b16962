// Package status реализует HTTP-обработчик смены статуса обращения.
package status

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
	"github.com/magabrotheeeer/rave-tracker/internal/services/support"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Request — входные данные смены статуса обращения.
type Request struct {
	Status        string `json:"status" validate:"required"`
	InternalNotes string `json:"internal_notes"`
}

// Service описывает интерфейс бизнес-логики смены статуса обращений.
type Service interface {
	UpdateStatus(ctx context.Context, ticketUID, status, staffUID, internalNotes string) error
}

// Handler обрабатывает запросы на смену статуса обращения.
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

// ServeHTTP обрабатывает HTTP-запрос сотрудника на смену статуса обращения.
//
// @Summary Смена статуса обращения
// @Tags support
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Идентификатор обращения"
// @Param request body Request true "Новый статус"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/support/tickets/{id}/status [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	staffUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || staffUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

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

	err := h.service.UpdateStatus(r.Context(), ticketUID, req.Status, staffUID, req.InternalNotes)
	switch {
	case errors.Is(err, support.ErrInvalidStatus):
		log.Error("invalid ticket status", slog.String("status", req.Status))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case errors.Is(err, repository.ErrNotFound):
		log.Error("ticket not found", slog.String("ticket", ticketUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("ticket not found"))
		return
	case err != nil:
		log.Error("failed to update ticket status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update ticket status"))
		return
	}

	log.Info("ticket status updated",
		slog.String("ticket", ticketUID), slog.String("status", req.Status))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":     ticketUID,
		"status": req.Status,
	}))
}
