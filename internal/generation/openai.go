package generation

import (
	"context"

	"github.com/novalxp/novalxp-bot/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// chatAPI is the slice of the OpenAI client the generator uses.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIGenerator produces answers through the OpenAI chat completions API.
// The routed model id is passed through as-is, so deployments can point
// per-intent routing at any chat-capable model.
type OpenAIGenerator struct {
	client chatAPI
}

func NewOpenAIGenerator(apiKey string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, domain.NewBotError(domain.ErrCodeInternalError,
			"OPENAI_API_KEY must be set for the openai generation provider", false)
	}
	return &OpenAIGenerator{client: openai.NewClient(apiKey)}, nil
}

// NewOpenAIGeneratorWithClient builds the generator over an explicit client.
func NewOpenAIGeneratorWithClient(client chatAPI) *OpenAIGenerator {
	return &OpenAIGenerator{client: client}
}

func (g *OpenAIGenerator) Converse(ctx context.Context, in Input) (Output, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: in.ModelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(in.UserText, in.Citations)},
		},
		MaxTokens:   in.MaxTokens,
		Temperature: in.Temperature,
	})
	if err != nil {
		return Output{}, mapOpenAIError(err)
	}

	text := ""
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	if text == "" {
		text = emptyAnswerFallback
	}

	return Output{
		Text: text,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// mapOpenAIError normalizes API failures the same way the Bedrock provider
// does, keyed on HTTP status instead of exception names.
func mapOpenAIError(err error) error {
	if apiErr, ok := err.(*openai.APIError); ok {
		switch apiErr.HTTPStatusCode {
		case 401, 403, 400, 404:
			return domain.NewBotErrorWithCause(domain.ErrCodeModelAccessDenied, apiErr.Message, true, err)
		case 429, 503:
			return domain.NewBotErrorWithCause(domain.ErrCodeTimeout, apiErr.Message, true, err)
		}
	}
	return domain.NewBotErrorWithCause(domain.ErrCodeInternalError, "OpenAI invocation failed", false, err)
}
