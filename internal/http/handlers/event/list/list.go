// Package list реализует HTTP-обработчик списка событий с фильтрами
// и пагинацией.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/rave-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
	"github.com/magabrotheeeer/rave-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
)

// Service описывает интерфейс бизнес-логики списка событий.
type Service interface {
	List(ctx context.Context, filter models.EventFilter, viewerUID, viewerRole string) (*models.EventPage, error)
}

// Handler обрабатывает запросы на список событий.
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

// ServeHTTP обрабатывает HTTP-запрос на список событий.
//
// @Summary Список событий
// @Tags events
// @Produce json
// @Param genre query string false "Фильтр по жанру"
// @Param search query string false "Поиск по названию, описанию и месту"
// @Param date_from query string false "Начало окна дат (RFC3339)"
// @Param date_to query string false "Конец окна дат (RFC3339)"
// @Param page query int false "Номер страницы"
// @Param per_page query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /api/events [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := models.EventFilter{
		Genre:  r.URL.Query().Get("genre"),
		Search: r.URL.Query().Get("search"),
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.PerPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))

	if raw := r.URL.Query().Get("date_from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			log.Error("failed to parse date_from", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid date_from format, expected RFC3339"))
			return
		}
		filter.DateFrom = &parsed
	}
	if raw := r.URL.Query().Get("date_to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			log.Error("failed to parse date_to", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid date_to format, expected RFC3339"))
			return
		}
		filter.DateTo = &parsed
	}

	viewerUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	viewerRole, _ := r.Context().Value(middlewarectx.Role).(string)

	page, err := h.service.List(r.Context(), filter, viewerUID, viewerRole)
	if err != nil {
		log.Error("failed to list events", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list events"))
		return
	}

	render.JSON(w, r, response.OKWithData(page))
}
