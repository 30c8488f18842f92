package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/novalxp/novalxp-bot/internal/api"
	"github.com/novalxp/novalxp-bot/internal/api/handlers"
	"github.com/novalxp/novalxp-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Handle(ctx context.Context, req domain.ChatRequest) (domain.ChatResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(domain.ChatResult)
	return result, args.Error(1)
}

func setupRouter(authEnabled bool, keys []string) (http.Handler, *MockChatService) {
	chatSvc := new(MockChatService)
	router := NewRouter(RouterConfig{
		ChatHandler:    handlers.NewChatHandler(chatSvc, "eu-west-2"),
		APIAuthEnabled: authEnabled,
		APIKeys:        keys,
	})
	return router, chatSvc
}

const chatBody = `{
	"request_id": "req-1",
	"tenant_id": "tenant-1",
	"user": {"id": "42"},
	"query": {"text": "where is the settings page"}
}`

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _ := setupRouter(false, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp["ok"])
}

func TestRouter_ChatEndToEnd(t *testing.T) {
	router, chatSvc := setupRouter(false, nil)
	chatSvc.On("Handle", mock.Anything, mock.Anything).Return(domain.ChatResult{
		Intent:  domain.IntentSiteNavigation,
		Answer:  domain.Answer{Text: "Use the top menu.", Confidence: 0.8},
		ModelID: "amazon.nova-lite-v1:0",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(chatBody))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp api.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, domain.IntentSiteNavigation, resp.Intent)
	assert.Equal(t, "eu-west-2", resp.Meta.Region)
}

func TestRouter_ChatRequiresAuthWhenEnabled(t *testing.T) {
	router, chatSvc := setupRouter(true, []string{"key-a"})

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(chatBody))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	chatSvc.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)

	chatSvc.On("Handle", mock.Anything, mock.Anything).Return(domain.ChatResult{
		Intent: domain.IntentOther,
		Answer: domain.Answer{Text: "hi"},
	}, nil)

	req = httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(chatBody))
	req.Header.Set("Authorization", "Bearer key-a")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_HealthSkipsAuth(t *testing.T) {
	router, _ := setupRouter(true, []string{"key-a"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _ := setupRouter(false, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_OversizedBodyRejected(t *testing.T) {
	router, chatSvc := setupRouter(false, nil)

	big := strings.Repeat("x", 2*1024*1024)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(big))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	chatSvc.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}
