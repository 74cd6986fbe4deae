package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/foxseedlab/voicecap/internal/structurer"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const structuringTemperature = 0.2

type OpenAIChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type OpenAIChatCompleter struct {
	client openai.Client
	model  string
}

func NewOpenAIChatCompleter(cfg OpenAIChatConfig) structurer.Completer {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIChatCompleter{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (c *OpenAIChatCompleter) CompleteJSON(ctx context.Context, prompt structurer.Prompt) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		Temperature: openai.Float(structuringTemperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
