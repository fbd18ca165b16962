package ticketcreate

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
	"github.com/magabrotheeeer/rave-tracker/internal/services/support"
)

// MockService реализует интерфейс ticketcreate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateTicket(ctx context.Context, userUID, subject, message, category, priority string) (*models.SupportTicket, error) {
	args := m.Called(ctx, userUID, subject, message, category, priority)
	if res := args.Get(0); res != nil {
		return res.(*models.SupportTicket), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestTicketCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	const userUID = "11111111-1111-1111-1111-111111111111"

	validBody := `{
		"subject": "Не работает оплата",
		"message": "Не могу оплатить тариф pro",
		"category": "billing",
		"priority": "high"
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
			name:     "успешное создание обращения",
			body:     validBody,
			withAuth: true,
			setupMock: func(m *MockService) {
				ticket := &models.SupportTicket{
					UID:      "44444444-4444-4444-4444-444444444444",
					Subject:  "Не работает оплата",
					Status:   "open",
					Category: "billing",
				}
				m.On("CreateTicket", mock.Anything, userUID, "Не работает оплата", "Не могу оплатить тариф pro", "billing", "high").
					Return(ticket, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"status":"open"`,
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
			name:     "недопустимая категория",
			body:     strings.Replace(validBody, "billing", "weather", 1),
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("CreateTicket", mock.Anything, userUID, "Не работает оплата", "Не могу оплатить тариф pro", "weather", "high").
					Return(nil, support.ErrInvalidCategory)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   support.ErrInvalidCategory.Error(),
		},
		{
			name:           "слишком короткая тема",
			body:           `{"subject": "Оп", "message": "текст", "category": "other"}`,
			withAuth:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `too short`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/support/tickets", strings.NewReader(tt.body))
			if tt.withAuth {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, userUID)
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
