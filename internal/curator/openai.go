package curator

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/nguyentantai21042004/storycut/internal/config"
)

const systemPrompt = "You are a short-form video editor. Answer with a single JSON object only."

type openAIReasoner struct {
	client openai.Client
	model  string
}

// NewOpenAI creates a Reasoner for any OpenAI-compatible chat completions API.
func NewOpenAI(cfg config.OpenAIConfig) Reasoner {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openAIReasoner{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (o *openAIReasoner) Reason(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Model:       o.model,
		Temperature: openai.Float(0.2),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices: %w", ErrEmptyAnswer)
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if raw == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyAnswer)
	}
	return raw, nil
}
