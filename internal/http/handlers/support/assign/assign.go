// Package assign реализует HTTP-обработчик назначения обращения сотруднику.
package assign

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

	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/services/support"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Request — входные данные назначения обращения.
type Request struct {
	AssigneeUID string `json:"assignee_id" validate:"required,uuid"`
}

// Service описывает интерфейс бизнес-логики назначения обращений.
type Service interface {
	Assign(ctx context.Context, ticketUID, assigneeUID string) error
}

// Handler обрабатывает запросы на назначение обращения.
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

// ServeHTTP обрабатывает HTTP-запрос на назначение обращения сотруднику.
//
// @Summary Назначение обращения
// @Tags support
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Идентификатор обращения"
// @Param request body Request true "Идентификатор сотрудника"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/support/tickets/{id}/assign [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.assign"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	err := h.service.Assign(r.Context(), ticketUID, req.AssigneeUID)
	switch {
	case errors.Is(err, support.ErrNotStaff):
		log.Error("assignee is not staff", slog.String("assignee", req.AssigneeUID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case errors.Is(err, repository.ErrNotFound):
		log.Error("ticket or assignee not found", slog.String("ticket", ticketUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("ticket or assignee not found"))
		return
	case err != nil:
		log.Error("failed to assign ticket", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not assign ticket"))
		return
	}

	log.Info("ticket assigned",
		slog.String("ticket", ticketUID), slog.String("assignee", req.AssigneeUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":          ticketUID,
		"assignee_id": req.AssigneeUID,
	}))
}
