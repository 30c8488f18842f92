package generation

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/novalxp/novalxp-bot/internal/domain"
)

// bedrockAPI is the slice of the Bedrock runtime client the generator uses.
type bedrockAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockGenerator produces answers through the Bedrock Converse API.
type BedrockGenerator struct {
	client bedrockAPI
}

// NewBedrockGenerator resolves AWS credentials from the default chain and
// builds a Converse-backed generator for the given region.
func NewBedrockGenerator(ctx context.Context, region string) (*BedrockGenerator, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, domain.NewBotErrorWithCause(domain.ErrCodeInternalError,
			"failed to load AWS configuration", false, err)
	}
	return &BedrockGenerator{client: bedrockruntime.NewFromConfig(awsCfg)}, nil
}

// NewBedrockGeneratorWithClient builds the generator over an explicit client.
func NewBedrockGeneratorWithClient(client bedrockAPI) *BedrockGenerator {
	return &BedrockGenerator{client: client}
}

func (g *BedrockGenerator) Converse(ctx context.Context, in Input) (Output, error) {
	prompt := buildPrompt(in.UserText, in.Citations)

	result, err := g.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(in.ModelID),
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: systemPrompt},
		},
		Messages: []brtypes.Message{{
			Role: brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{
				&brtypes.ContentBlockMemberText{Value: prompt},
			},
		}},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(in.MaxTokens)),
			Temperature: aws.Float32(in.Temperature),
		},
	})
	if err != nil {
		return Output{}, mapBedrockError(err)
	}

	text := extractText(result.Output)
	if text == "" {
		text = emptyAnswerFallback
	}

	out := Output{Text: text}
	if result.Usage != nil {
		out.Usage = Usage{
			InputTokens:  int(aws.ToInt32(result.Usage.InputTokens)),
			OutputTokens: int(aws.ToInt32(result.Usage.OutputTokens)),
			TotalTokens:  int(aws.ToInt32(result.Usage.TotalTokens)),
		}
	}
	return out, nil
}

// extractText joins the text blocks of the converse output message.
func extractText(output brtypes.ConverseOutput) string {
	message, ok := output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	var blocks []string
	for _, part := range message.Value.Content {
		if text, ok := part.(*brtypes.ContentBlockMemberText); ok {
			if trimmed := strings.TrimSpace(text.Value); trimmed != "" {
				blocks = append(blocks, trimmed)
			}
		}
	}
	return strings.Join(blocks, "\n")
}

// mapBedrockError normalizes Bedrock failures into domain error codes:
// access and validation failures surface as MODEL_ACCESS_DENIED so callers
// can retry on a fallback model, throttling surfaces as TIMEOUT.
func mapBedrockError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDeniedException", "ValidationException":
			return domain.NewBotErrorWithCause(domain.ErrCodeModelAccessDenied, apiErr.ErrorMessage(), true, err)
		case "ThrottlingException", "ServiceUnavailableException":
			return domain.NewBotErrorWithCause(domain.ErrCodeTimeout, apiErr.ErrorMessage(), true, err)
		}
	}
	return domain.NewBotErrorWithCause(domain.ErrCodeInternalError, "Bedrock invocation failed", false, err)
}
