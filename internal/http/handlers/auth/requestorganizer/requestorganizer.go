// Package requestorganizer реализует HTTP-обработчик заявки на роль организатора.
package requestorganizer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/rave-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
)

// Request — входные данные заявки на организатора
type Request struct {
	CompanyName string `json:"company_name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Experience  string `json:"experience" validate:"required"`
}

// Service описывает интерфейс бизнес-логики заявок.
type Service interface {
	RequestOrganizer(ctx context.Context, userUID, companyName, description, experience string) (int, error)
}

// Handler обрабатывает заявки на роль организатора.
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

// ServeHTTP обрабатывает HTTP-запрос на подачу заявки.
//
// @Summary Заявка на роль организатора
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Данные заявки"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /auth/request-organizer [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.requestorganizer"

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

	id, err := h.service.RequestOrganizer(r.Context(), userUID, req.CompanyName, req.Description, req.Experience)
	if err != nil {
		log.Error("failed to create organizer request", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create organizer request"))
		return
	}

	log.Info("organizer request created", slog.Int("id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":      id,
		"status":  "pending",
		"message": "organizer request submitted",
	}))
}
