// Package comment реализует HTTP-обработчик добавления комментария к событию.
package comment

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
	"github.com/magabrotheeeer/rave-tracker/internal/services/event"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// Request — входные данные комментария
type Request struct {
	Comment string `json:"comment" validate:"required"`
}

// Service описывает интерфейс бизнес-логики комментариев.
type Service interface {
	AddComment(ctx context.Context, eventUID, userUID, username, text string) (*models.Comment, error)
}

// Handler обрабатывает запросы на добавление комментария.
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

// ServeHTTP обрабатывает HTTP-запрос на добавление комментария.
//
// @Summary Комментарий к событию
// @Tags events
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "UID события"
// @Param request body Request true "Текст комментария"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/events/{id}/comments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.comment"

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
	username, _ := r.Context().Value(middlewarectx.User).(string)
	eventUID := chi.URLParam(r, "id")

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

	comment, err := h.service.AddComment(r.Context(), eventUID, userUID, username, req.Comment)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Error("event not found")
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("event not found"))
		return
	case errors.Is(err, event.ErrEmptyComment):
		log.Error("empty comment")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("comment text is required"))
		return
	case err != nil:
		log.Error("failed to add comment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not add comment"))
		return
	}

	log.Info("comment added", slog.String("event", eventUID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"comment": comment,
	}))
}
