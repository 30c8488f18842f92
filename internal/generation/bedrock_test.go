package generation

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/novalxp/novalxp-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBedrockAPI struct {
	input  *bedrockruntime.ConverseInput
	output *bedrockruntime.ConverseOutput
	err    error
}

func (f *fakeBedrockAPI) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = params
	return f.output, f.err
}

func converseReply(texts ...string) *bedrockruntime.ConverseOutput {
	content := make([]brtypes.ContentBlock, 0, len(texts))
	for _, text := range texts {
		content = append(content, &brtypes.ContentBlockMemberText{Value: text})
	}
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{Role: brtypes.ConversationRoleAssistant, Content: content},
		},
		Usage: &brtypes.TokenUsage{
			InputTokens:  aws.Int32(12),
			OutputTokens: aws.Int32(34),
			TotalTokens:  aws.Int32(46),
		},
	}
}

func TestBedrockGenerator_Converse(t *testing.T) {
	api := &fakeBedrockAPI{output: converseReply("Take Security Basics.", " It covers phishing. ")}
	gen := NewBedrockGeneratorWithClient(api)

	out, err := gen.Converse(context.Background(), Input{
		ModelID:   "amazon.nova-pro-v1:0",
		UserText:  "what should I take?",
		Citations: []domain.Citation{{Title: "Security Basics", Snippet: "phishing"}},
		MaxTokens: 600,
	})
	require.NoError(t, err)
	assert.Equal(t, "Take Security Basics.\nIt covers phishing.", out.Text)
	assert.Equal(t, Usage{InputTokens: 12, OutputTokens: 34, TotalTokens: 46}, out.Usage)

	require.NotNil(t, api.input)
	assert.Equal(t, "amazon.nova-pro-v1:0", aws.ToString(api.input.ModelId))
	assert.Equal(t, int32(600), aws.ToInt32(api.input.InferenceConfig.MaxTokens))
	assert.Equal(t, float32(0), aws.ToFloat32(api.input.InferenceConfig.Temperature))

	require.Len(t, api.input.Messages, 1)
	userBlock, ok := api.input.Messages[0].Content[0].(*brtypes.ContentBlockMemberText)
	require.True(t, ok)
	assert.Contains(t, userBlock.Value, "1. [Security Basics] phishing")
}

func TestBedrockGenerator_EmptyReplyFallsBack(t *testing.T) {
	api := &fakeBedrockAPI{output: &bedrockruntime.ConverseOutput{}}
	gen := NewBedrockGeneratorWithClient(api)

	out, err := gen.Converse(context.Background(), Input{ModelID: "m", UserText: "q"})
	require.NoError(t, err)
	assert.Equal(t, emptyAnswerFallback, out.Text)
}

func TestMapBedrockError(t *testing.T) {
	tests := []struct {
		exception     string
		wantCode      string
		wantRetryable bool
	}{
		{"AccessDeniedException", domain.ErrCodeModelAccessDenied, true},
		{"ValidationException", domain.ErrCodeModelAccessDenied, true},
		{"ThrottlingException", domain.ErrCodeTimeout, true},
		{"ServiceUnavailableException", domain.ErrCodeTimeout, true},
		{"SomethingElseException", domain.ErrCodeInternalError, false},
	}
	for _, tt := range tests {
		t.Run(tt.exception, func(t *testing.T) {
			api := &fakeBedrockAPI{err: &smithy.GenericAPIError{Code: tt.exception, Message: "upstream"}}
			gen := NewBedrockGeneratorWithClient(api)

			_, err := gen.Converse(context.Background(), Input{ModelID: "m", UserText: "q"})
			require.Error(t, err)
			botErr := domain.AsBotError(err)
			assert.Equal(t, tt.wantCode, botErr.Code)
			assert.Equal(t, tt.wantRetryable, botErr.Retryable)
		})
	}
}
