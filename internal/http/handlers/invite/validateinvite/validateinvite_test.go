package validateinvite

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

	"github.com/magabrotheeeer/rave-tracker/internal/models"
	"github.com/magabrotheeeer/rave-tracker/internal/services/auth"
)

// MockService реализует интерфейс validateinvite.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ValidateInvite(ctx context.Context, code string) (*models.InviteCode, error) {
	args := m.Called(ctx, code)
	if res := args.Get(0); res != nil {
		return res.(*models.InviteCode), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestValidateInviteHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "валидный инвайт-код",
			body: `{"invite_code": "RAVE-2026-XYZ"}`,
			setupMock: func(m *MockService) {
				invite := &models.InviteCode{
					Code:        "RAVE-2026-XYZ",
					MaxUses:     1,
					CurrentUses: 0,
				}
				m.On("ValidateInvite", mock.Anything, "RAVE-2026-XYZ").Return(invite, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"valid":true`,
		},
		{
			name: "использованный инвайт-код возвращает 200 с пояснением",
			body: `{"invite_code": "USED-CODE"}`,
			setupMock: func(m *MockService) {
				m.On("ValidateInvite", mock.Anything, "USED-CODE").
					Return(nil, auth.ErrInviteUsed)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"valid":false`,
		},
		{
			name: "несуществующий инвайт-код",
			body: `{"invite_code": "NOPE"}`,
			setupMock: func(m *MockService) {
				m.On("ValidateInvite", mock.Anything, "NOPE").
					Return(nil, auth.ErrInviteInvalid)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   auth.ErrInviteInvalid.Error(),
		},
		{
			name:           "пустое тело запроса",
			body:           `{}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `required field`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/invites/validate", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
