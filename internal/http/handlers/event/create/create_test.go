package create

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/rave-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/services/event"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, organizerUID string, e models.Event) (string, error) {
	args := m.Called(ctx, organizerUID, e)
	return args.String(0), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	const organizerUID = "11111111-1111-1111-1111-111111111111"

	validBody := `{
		"title": "Psychedelic Forest",
		"description": "Open air в лесу",
		"genre": "psytrance",
		"date_start": "2026-07-10T22:00:00Z",
		"date_end": "2026-07-11T08:00:00Z",
		"location": "Ленинградская область",
		"price": 1500
	}`

	tests := []struct {
		name           string
		body           string
		withAuth       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешная публикация события",
			body:     validBody,
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, organizerUID, mock.AnythingOfType("models.Event")).
					Return("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"uid":"aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"`,
		},
		{
			name:           "без аутентификации",
			body:           validBody,
			withAuth:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"authentication required"`,
		},
		{
			name:           "отсутствует обязательное поле",
			body:           `{"title": "No genre"}`,
			withAuth:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `required field`,
		},
		{
			name: "неизвестный жанр",
			body: strings.Replace(validBody, "psytrance", "jazz", 1),

			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, organizerUID, mock.AnythingOfType("models.Event")).
					Return("", event.ErrInvalidGenre)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid genre"`,
		},
		{
			name:     "превышен лимит тарифного плана",
			body:     validBody,
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, organizerUID, mock.AnythingOfType("models.Event")).
					Return("", event.ErrEventsLimit)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `upgrade your subscription`,
		},
		{
			name:           "некорректная дата",
			body:           strings.Replace(validBody, "2026-07-10T22:00:00Z", "10.07.2026", 1),
			withAuth:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid date_start format`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(tt.body))
			if tt.withAuth {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, organizerUID)
				ctx = context.WithValue(ctx, middlewarectx.Role, "organizer")
				req = req.WithContext(ctx)
			}

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
