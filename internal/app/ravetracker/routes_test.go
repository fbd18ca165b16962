package ravetracker

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/rave-tracker/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/rave-tracker/internal/services/auth"
	eventservice "github.com/magabrotheeeer/rave-tracker/internal/services/event"
	reportservice "github.com/magabrotheeeer/rave-tracker/internal/services/report"
	subscriptionservice "github.com/magabrotheeeer/rave-tracker/internal/services/subscription"
	supportservice "github.com/magabrotheeeer/rave-tracker/internal/services/support"
)

func newTestRouter() chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	maker := jwt.NewJWTMaker("test-secret", time.Hour)

	r := chi.NewRouter()
	RegisterRoutes(r, logger, maker,
		authservice.NewAuthService(nil, nil, maker, logger, 5, 720*time.Hour),
		eventservice.NewEventService(nil, nil, nil, logger),
		subscriptionservice.NewSubscriptionService(nil, nil, logger),
		reportservice.NewReportService(nil, nil, logger),
		supportservice.NewSupportService(nil, nil, logger))
	return r
}

func TestRegisterRoutes(t *testing.T) {
	router := newTestRouter()

	t.Run("защищенные маршруты требуют токен", func(t *testing.T) {
		protected := []struct {
			method string
			path   string
		}{
			{http.MethodGet, "/api/v1/auth/profile"},
			{http.MethodPost, "/api/v1/events"},
			{http.MethodGet, "/api/v1/reports"},
			{http.MethodPut, "/api/v1/support/tickets/t1/assign"},
		}
		for _, tt := range protected {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("каталог категорий доступен без токена", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/support/categories", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, w.Body.String(), "technical")
	})

	t.Run("метрики опубликованы", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
