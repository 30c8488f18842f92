package domain

// MaxHistoryTurns bounds the conversation history accepted per request.
const MaxHistoryTurns = 20

// ChatUser identifies the user issuing a chat request
type ChatUser struct {
	ID         string `json:"id"`
	Role       string `json:"role,omitempty"`
	Locale     string `json:"locale,omitempty"`
	Department string `json:"department,omitempty"`
}

// ChatContext carries the situational context supplied by the calling surface
type ChatContext struct {
	CourseID     string `json:"course_id,omitempty"`
	CourseName   string `json:"course_name,omitempty"`
	SectionID    string `json:"section_id,omitempty"`
	SectionTitle string `json:"section_title,omitempty"`
	PageType     string `json:"page_type,omitempty"`
	CurrentURL   string `json:"current_url,omitempty"`
}

// HistoryTurn is a single prior conversation turn
type HistoryTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatQuery is the free-text question plus optional bounded history
type ChatQuery struct {
	Text    string        `json:"text"`
	History []HistoryTurn `json:"history,omitempty"`
}

// ChatOptions carries per-request generation knobs
type ChatOptions struct {
	MaxOutputTokens    int  `json:"max_output_tokens,omitempty"`
	RequireCitations   bool `json:"require_citations,omitempty"`
	AllowModelFallback bool `json:"allow_model_fallback,omitempty"`
}

// ChatRequest is the /v1/chat request payload
type ChatRequest struct {
	RequestID string      `json:"request_id"`
	TenantID  string      `json:"tenant_id"`
	User      ChatUser    `json:"user"`
	Context   ChatContext `json:"context,omitempty"`
	Query     ChatQuery   `json:"query"`
	Options   ChatOptions `json:"options,omitempty"`
}

// Action is a suggested UI action attached to an answer
type Action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Answer is the generated response with its supporting citations
type Answer struct {
	Text       string     `json:"text"`
	Confidence float64    `json:"confidence"`
	Citations  []Citation `json:"citations"`
}

// ChatResult is the orchestrator output consumed by the transport layer
type ChatResult struct {
	Intent       Intent
	Answer       Answer
	Actions      []Action
	ModelID      string
	FallbackUsed bool
}
