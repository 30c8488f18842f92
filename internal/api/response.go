package api

import (
	"encoding/json"
	"net/http"

	"github.com/novalxp/novalxp-bot/internal/domain"
)

// ErrorBody is the error payload inside an error envelope.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	RequestID string    `json:"request_id"`
	Error     ErrorBody `json:"error"`
}

// Meta carries response metadata for observability on the client side.
type Meta struct {
	Region       string `json:"region"`
	ModelID      string `json:"model_id"`
	FallbackUsed bool   `json:"fallback_used"`
	LatencyMS    int64  `json:"latency_ms"`
}

// ChatResponse is the /v1/chat success body.
type ChatResponse struct {
	RequestID string          `json:"request_id"`
	Intent    domain.Intent   `json:"intent"`
	Answer    domain.Answer   `json:"answer"`
	Actions   []domain.Action `json:"actions"`
	Meta      Meta            `json:"meta"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes the error envelope for any error, normalizing non-domain
// errors to INTERNAL_ERROR. An unknown request id is reported as "unknown".
func WriteError(w http.ResponseWriter, requestID string, err error) {
	if requestID == "" {
		requestID = "unknown"
	}
	botErr := domain.AsBotError(err)
	JSON(w, domain.HTTPStatus(botErr.Code), ErrorEnvelope{
		RequestID: requestID,
		Error: ErrorBody{
			Code:      botErr.Code,
			Message:   botErr.Message,
			Retryable: botErr.Retryable,
		},
	})
}
