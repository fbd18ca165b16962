package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/storage/repository"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, eventUID string) (*models.Event, error) {
	args := m.Called(ctx, eventUID)
	if res := args.Get(0); res != nil {
		return res.(*models.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		eventUID       string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное чтение события",
			eventUID: "11111111-1111-1111-1111-111111111111",
			setupMock: func(m *MockService) {
				event := &models.Event{
					UID:      "11111111-1111-1111-1111-111111111111",
					Title:    "Goa Gil Night",
					Genre:    "goa",
					Location: "Moscow",
				}
				m.On("Get", mock.Anything, "11111111-1111-1111-1111-111111111111").Return(event, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"Goa Gil Night"`,
		},
		{
			name:     "событие не найдено",
			eventUID: "22222222-2222-2222-2222-222222222222",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "22222222-2222-2222-2222-222222222222").
					Return(nil, repository.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"event not found"`,
		},
		{
			name:     "ошибка сервиса чтения",
			eventUID: "33333333-3333-3333-3333-333333333333",
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "33333333-3333-3333-3333-333333333333").
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not read event"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/events/"+tt.eventUID, nil)
			// Устанавливаем URL params с помощью роутера chi
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.eventUID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
