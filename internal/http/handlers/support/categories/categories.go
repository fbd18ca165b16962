// Package categories реализует HTTP-обработчик списка категорий обращений.
package categories

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/rave-tracker/internal/http/response"
)

// Service описывает интерфейс бизнес-логики категорий обращений.
type Service interface {
	Categories() []string
}

// Handler обрабатывает запросы списка категорий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP обрабатывает HTTP-запрос списка категорий обращений.
//
// @Summary Категории обращений
// @Tags support
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/support/categories [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.categories"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	log.Info("categories requested")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"categories": h.service.Categories(),
	}))
}
