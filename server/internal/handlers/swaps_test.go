package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/maynagashev/skillswap/models"
	"github.com/maynagashev/skillswap/server/internal/handlers"
	"github.com/maynagashev/skillswap/server/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSwapService struct {
	mock.Mock
}

func (m *MockSwapService) swapResult(args mock.Arguments) (*models.SwapRequest, error) {
	var swap *models.SwapRequest
	if v := args.Get(0); v != nil {
		swap = v.(*models.SwapRequest)
	}
	return swap, args.Error(1)
}

func (m *MockSwapService) Send(
	ctx context.Context,
	actingUserID string,
	req models.SendSwapRequest,
) (*models.SwapRequest, error) {
	return m.swapResult(m.Called(ctx, actingUserID, req))
}

func (m *MockSwapService) List(ctx context.Context, userID string) ([]models.SwapRequest, error) {
	args := m.Called(ctx, userID)
	var swaps []models.SwapRequest
	if v := args.Get(0); v != nil {
		swaps = v.([]models.SwapRequest)
	}
	return swaps, args.Error(1)
}

func (m *MockSwapService) Respond(
	ctx context.Context,
	actingUserID, requestID string,
	status models.SwapStatus,
) (*models.SwapRequest, error) {
	return m.swapResult(m.Called(ctx, actingUserID, requestID, status))
}

func (m *MockSwapService) Summary(ctx context.Context, userID string) (*models.SwapSummary, error) {
	args := m.Called(ctx, userID)
	var summary *models.SwapSummary
	if v := args.Get(0); v != nil {
		summary = v.(*models.SwapSummary)
	}
	return summary, args.Error(1)
}

func setupSwapRouter(h *handlers.SwapHandler, userID string) *chi.Mux {
	r := chi.NewRouter()
	if userID != "" {
		r.Use(withUser(userID))
	}
	r.Post("/swaps", h.Send)
	r.Get("/swaps", h.List)
	r.Put("/swaps/respond", h.Respond)
	r.Get("/swaps/summary", h.Summary)
	return r
}

func TestSwapHandler_Send(t *testing.T) {
	validBody := `{"fromUserId":"2","toUserId":"1","skillOffered":"Guitar","skillWanted":"Cooking","message":"hi"}`

	tests := []struct {
		name           string
		userID         string
		body           string
		serviceErr     error
		callService    bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Успешная отправка",
			userID:         "2",
			body:           validBody,
			callService:    true,
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"pending"`,
		},
		{
			name:           "Без сессии",
			body:           validBody,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Not authenticated"}`,
		},
		{
			name:           "Чужой отправитель",
			userID:         "3",
			body:           validBody,
			serviceErr:     services.ErrForbidden,
			callService:    true,
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"error":"Unauthorized"}`,
		},
		{
			name:           "Получатель не найден",
			userID:         "2",
			body:           validBody,
			serviceErr:     services.ErrUserNotFound,
			callService:    true,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"User not found"}`,
		},
		{
			name:           "Запрос самому себе",
			userID:         "2",
			body:           validBody,
			serviceErr:     services.ErrSelfSwap,
			callService:    true,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Cannot send a swap request to yourself"}`,
		},
		{
			name:           "Невалидный JSON",
			userID:         "2",
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid request body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockSwapService)
			if tt.callService {
				if tt.serviceErr != nil {
					mockService.On("Send", mock.Anything, tt.userID, mock.Anything).Return(nil, tt.serviceErr).Once()
				} else {
					mockService.On("Send", mock.Anything, tt.userID, mock.MatchedBy(func(req models.SendSwapRequest) bool {
						return req.ToUserID == "1" && req.SkillOffered == "Guitar"
					})).Return(&models.SwapRequest{ID: "1", Status: models.SwapStatusPending}, nil).Once()
				}
			}
			r := setupSwapRouter(handlers.NewSwapHandler(mockService), tt.userID)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/swaps", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestSwapHandler_List(t *testing.T) {
	mockService := new(MockSwapService)
	mockService.On("List", mock.Anything, "1").Return([]models.SwapRequest{
		{ID: "2", FromUserID: "1", ToUserID: "3", Status: models.SwapStatusPending},
		{ID: "1", FromUserID: "2", ToUserID: "1", Status: models.SwapStatusAccepted},
	}, nil).Once()
	r := setupSwapRouter(handlers.NewSwapHandler(mockService), "1")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swaps", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var swaps []models.SwapRequest
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &swaps))
	require.Len(t, swaps, 2)
	assert.Equal(t, "2", swaps[0].ID)
	mockService.AssertExpectations(t)
}

func TestSwapHandler_Respond(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockSetup      func(m *MockSwapService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Принятие",
			body: `{"requestId":"5","status":"accepted"}`,
			mockSetup: func(m *MockSwapService) {
				m.On("Respond", mock.Anything, "1", "5", models.SwapStatusAccepted).
					Return(&models.SwapRequest{ID: "5", Status: models.SwapStatusAccepted}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"accepted"`,
		},
		{
			name:           "Нет requestId",
			body:           `{"status":"accepted"}`,
			mockSetup:      func(*MockSwapService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Missing required fields"}`,
		},
		{
			name: "Запрос не найден",
			body: `{"requestId":"99","status":"rejected"}`,
			mockSetup: func(m *MockSwapService) {
				m.On("Respond", mock.Anything, "1", "99", models.SwapStatusRejected).
					Return(nil, services.ErrSwapNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Request not found"}`,
		},
		{
			name: "Не получатель",
			body: `{"requestId":"5","status":"accepted"}`,
			mockSetup: func(m *MockSwapService) {
				m.On("Respond", mock.Anything, "1", "5", models.SwapStatusAccepted).
					Return(nil, services.ErrForbidden).Once()
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"error":"Unauthorized"}`,
		},
		{
			name: "Недопустимый статус",
			body: `{"requestId":"5","status":"pending"}`,
			mockSetup: func(m *MockSwapService) {
				m.On("Respond", mock.Anything, "1", "5", models.SwapStatusPending).
					Return(nil, services.ErrInvalidStatus).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid status"}`,
		},
		{
			name: "Повторный ответ",
			body: `{"requestId":"5","status":"rejected"}`,
			mockSetup: func(m *MockSwapService) {
				m.On("Respond", mock.Anything, "1", "5", models.SwapStatusRejected).
					Return(nil, services.ErrInvalidTransition).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"Request already answered"}`,
		},
		{
			name: "Внутренняя ошибка",
			body: `{"requestId":"5","status":"accepted"}`,
			mockSetup: func(m *MockSwapService) {
				m.On("Respond", mock.Anything, "1", "5", models.SwapStatusAccepted).
					Return(nil, errors.New("boom")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockSwapService)
			tt.mockSetup(mockService)
			r := setupSwapRouter(handlers.NewSwapHandler(mockService), "1")

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/swaps/respond", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}

func TestSwapHandler_Summary(t *testing.T) {
	mockService := new(MockSwapService)
	mockService.On("Summary", mock.Anything, "1").
		Return(&models.SwapSummary{Total: 3, Pending: 1, Accepted: 1, Rejected: 1, IncomingPending: 1}, nil).Once()
	r := setupSwapRouter(handlers.NewSwapHandler(mockService), "1")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swaps/summary", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total":3`)
	mockService.AssertExpectations(t)
}

func TestSwapHandler_Unauthenticated(t *testing.T) {
	r := setupSwapRouter(handlers.NewSwapHandler(new(MockSwapService)), "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/swaps"},
		{http.MethodPut, "/swaps/respond"},
		{http.MethodGet, "/swaps/summary"},
	} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, tc.path)
	}
}
