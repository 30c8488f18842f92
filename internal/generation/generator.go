package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/novalxp/novalxp-bot/internal/config"
	"github.com/novalxp/novalxp-bot/internal/domain"
)

// Provider names accepted by GENERATION_PROVIDER.
const (
	ProviderStub    = "stub"
	ProviderBedrock = "bedrock"
	ProviderOpenAI  = "openai"
)

const systemPrompt = "You are the NovaLXP learning assistant. " +
	"Answer using the provided context only when the question needs catalog or course details. " +
	"If context is insufficient, ask one concise clarifying question. " +
	"Cite only the provided source titles in plain text."

const emptyAnswerFallback = "I could not generate a response."

// Input is one generation call: the routed model, the user's question and
// the retrieved grounding context.
type Input struct {
	ModelID     string
	UserText    string
	Citations   []domain.Citation
	MaxTokens   int
	Temperature float32
	Intent      domain.Intent
	UserRole    string
}

// Usage is the token accounting reported by the upstream model, when the
// provider exposes it.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Output is the model's answer text plus usage accounting.
type Output struct {
	Text  string
	Usage Usage
}

// Generator produces an answer for a single generation input. Providers
// return domain errors so callers can map them to transport responses.
type Generator interface {
	Converse(ctx context.Context, in Input) (Output, error)
}

// New builds the generator named by the configuration.
func New(ctx context.Context, cfg *config.Config) (Generator, error) {
	switch cfg.GenerationProvider {
	case ProviderStub, "":
		return NewStubGenerator(), nil
	case ProviderBedrock:
		return NewBedrockGenerator(ctx, cfg.Region)
	case ProviderOpenAI:
		return NewOpenAIGenerator(cfg.OpenAIAPIKey)
	default:
		return nil, domain.NewBotError(domain.ErrCodeInternalError,
			fmt.Sprintf("unknown generation provider %q", cfg.GenerationProvider), false)
	}
}

// buildPrompt renders the user question together with a numbered context
// block of the retrieved citations.
func buildPrompt(userText string, citations []domain.Citation) string {
	contextBlock := "No context retrieved."
	if len(citations) > 0 {
		lines := make([]string, 0, len(citations))
		for i, c := range citations {
			lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, c.Title, c.Snippet))
		}
		contextBlock = strings.Join(lines, "\n")
	}
	return fmt.Sprintf("User question: %s\n\nRetrieved context:\n%s", userText, contextBlock)
}
