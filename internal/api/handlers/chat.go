package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/novalxp/novalxp-bot/internal/api"
	"github.com/novalxp/novalxp-bot/internal/domain"
)

const answerPreviewMaxRunes = 300

// Generation output bounds accepted from callers.
const (
	minOutputTokens = 100
	maxOutputTokens = 2000
)

// ChatService runs one validated chat request through the assistant
// pipeline.
type ChatService interface {
	Handle(ctx context.Context, req domain.ChatRequest) (domain.ChatResult, error)
}

// ChatHandler is the /v1/chat transport endpoint.
type ChatHandler struct {
	service ChatService
	region  string
}

func NewChatHandler(service ChatService, region string) *ChatHandler {
	return &ChatHandler{service: service, region: region}
}

// Chat decodes, validates and serves a single chat turn.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, "", domain.NewBotError(domain.ErrCodeInvalidRequest,
			"Request body must be a JSON object.", false))
		return
	}

	if err := validateChatRequest(req); err != nil {
		api.WriteError(w, req.RequestID, err)
		return
	}

	result, err := h.service.Handle(r.Context(), req)
	if err != nil {
		api.WriteError(w, req.RequestID, err)
		return
	}

	latency := time.Since(started).Milliseconds()
	logChatRequest(req, result, latency)

	api.JSON(w, http.StatusOK, api.ChatResponse{
		RequestID: req.RequestID,
		Intent:    result.Intent,
		Answer:    result.Answer,
		Actions:   result.Actions,
		Meta: api.Meta{
			Region:       h.region,
			ModelID:      result.ModelID,
			FallbackUsed: result.FallbackUsed,
			LatencyMS:    latency,
		},
	})
}

// validateChatRequest enforces the chat API contract on a decoded payload.
func validateChatRequest(req domain.ChatRequest) error {
	switch {
	case req.RequestID == "":
		return invalid("request_id is required and must be a string.")
	case req.TenantID == "":
		return invalid("tenant_id is required and must be a string.")
	case req.User.ID == "":
		return invalid("user.id is required and must be a string.")
	case strings.TrimSpace(req.Query.Text) == "":
		return invalid("query.text is required and must be non-empty.")
	case len(req.Query.History) > domain.MaxHistoryTurns:
		return invalid("query.history must be an array with at most 20 turns.")
	case req.Options.MaxOutputTokens != 0 &&
		(req.Options.MaxOutputTokens < minOutputTokens || req.Options.MaxOutputTokens > maxOutputTokens):
		return invalid("options.max_output_tokens must be an integer between 100 and 2000.")
	}
	return nil
}

func invalid(message string) error {
	return domain.NewBotError(domain.ErrCodeInvalidRequest, message, false)
}

// chatLogEntry is the per-request observability record. Query and answer
// text only appear in anonymized form.
type chatLogEntry struct {
	RequestID           string `json:"request_id"`
	UserID              string `json:"user_id"`
	Intent              string `json:"intent"`
	ModelID             string `json:"model_id"`
	FallbackUsed        bool   `json:"fallback_used"`
	RetrievedChunkCount int    `json:"retrieved_chunk_count"`
	LatencyMS           int64  `json:"latency_ms"`
	QueryTextAnon       string `json:"query_text_anon"`
	QueryCanonical      string `json:"query_canonical"`
	QueryHash           string `json:"query_hash"`
	AnswerPreviewAnon   string `json:"answer_preview_anon"`
	TopCitationTitle    string `json:"top_citation_title"`
	TopCitationURL      string `json:"top_citation_url"`
}

func logChatRequest(req domain.ChatRequest, result domain.ChatResult, latencyMS int64) {
	canonical := canonicalizeQuestion(req.Query.Text)

	entry := chatLogEntry{
		RequestID:           req.RequestID,
		UserID:              req.User.ID,
		Intent:              string(result.Intent),
		ModelID:             result.ModelID,
		FallbackUsed:        result.FallbackUsed,
		RetrievedChunkCount: len(result.Answer.Citations),
		LatencyMS:           latencyMS,
		QueryTextAnon:       anonymizeText(req.Query.Text),
		QueryCanonical:      canonical,
		QueryHash:           hashQuestion(canonical),
		AnswerPreviewAnon:   truncateRunes(anonymizeText(result.Answer.Text), answerPreviewMaxRunes),
	}
	if len(result.Answer.Citations) > 0 {
		entry.TopCitationTitle = result.Answer.Citations[0].Title
		entry.TopCitationURL = result.Answer.Citations[0].URL
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		log.Printf("chat_log_marshal_error: %v", err)
		return
	}
	log.Println(string(payload))
}
