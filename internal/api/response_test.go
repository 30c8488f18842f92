package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/novalxp/novalxp-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_DomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, "req-1", domain.NewBotError(domain.ErrCodeRetrievalUnavailable, "No context.", true))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "req-1", envelope.RequestID)
	assert.Equal(t, domain.ErrCodeRetrievalUnavailable, envelope.Error.Code)
	assert.Equal(t, "No context.", envelope.Error.Message)
	assert.True(t, envelope.Error.Retryable)
}

func TestWriteError_UnknownErrorNormalized(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, "", errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "unknown", envelope.RequestID)
	assert.Equal(t, domain.ErrCodeInternalError, envelope.Error.Code)
	assert.False(t, envelope.Error.Retryable)
}

func TestWriteError_StatusByCode(t *testing.T) {
	tests := []struct {
		code       string
		wantStatus int
	}{
		{domain.ErrCodeInvalidRequest, http.StatusBadRequest},
		{domain.ErrCodeUnauthorized, http.StatusUnauthorized},
		{domain.ErrCodeForbidden, http.StatusForbidden},
		{domain.ErrCodeModelAccessDenied, http.StatusServiceUnavailable},
		{domain.ErrCodeTimeout, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, "req-1", domain.NewBotError(tt.code, "msg", false))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
