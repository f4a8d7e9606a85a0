package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockTransport sends prompts through the Bedrock Converse API.
type BedrockTransport struct {
	api         bedrockConverseAPI
	modelID     string
	temperature float32
	maxTokens   int32
}

func NewBedrockTransport(api bedrockConverseAPI, modelID string, temperature float32, maxTokens int32) (*BedrockTransport, error) {
	if api == nil {
		panic("llm: bedrock converse client cannot be nil")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("llm: bedrock model id is required")
	}
	return &BedrockTransport{api: api, modelID: modelID, temperature: temperature, maxTokens: maxTokens}, nil
}

func (t *BedrockTransport) SubmitPrompt(ctx context.Context, prompt string) (string, error) {
	inference := &brtypes.InferenceConfiguration{}
	if t.maxTokens > 0 {
		inference.MaxTokens = aws.Int32(t.maxTokens)
	}
	// Negative temperature leaves the model default in place.
	if t.temperature >= 0 {
		inference.Temperature = aws.Float32(t.temperature)
	}
	if inference.MaxTokens == nil && inference.Temperature == nil {
		inference = nil
	}

	out, err := t.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(t.modelID),
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: prompt}},
		}},
		InferenceConfig: inference,
	})
	if err != nil {
		return "", fmt.Errorf("llm: bedrock converse failed: %w", err)
	}
	return bedrockOutputText(out)
}

func bedrockOutputText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", errors.New("llm: bedrock response is nil")
	}
	msgOut, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("llm: bedrock response did not include a message output")
	}

	var builder strings.Builder
	for _, block := range msgOut.Value.Content {
		if textBlock, ok := block.(*brtypes.ContentBlockMemberText); ok {
			builder.WriteString(textBlock.Value)
		}
	}
	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
