package llm

import (
	"context"
	"fmt"
	"strings"

	"chat-relay-go/internal/config"
	"chat-relay-go/pkg/log"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIClient struct {
	cfg    config.LLMConfig
	gen    GenerationParams
	client openai.Client
}

func newOpenAIClient(cfg config.LLMConfig) *openAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// failures are surfaced to the caller as-is
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	return &openAIClient{
		cfg:    cfg,
		gen:    generationFromConfig(cfg.Generation),
		client: openai.NewClient(opts...),
	}
}

func (c *openAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if c.cfg.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(c.cfg.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    c.cfg.Model,
	}
	if c.gen.Temperature != nil {
		params.Temperature = openai.Float(*c.gen.Temperature)
	}
	if c.gen.TopP != nil {
		params.TopP = openai.Float(*c.gen.TopP)
	}
	if c.gen.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*c.gen.MaxTokens))
	}

	res, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Errorw("openai chat completion failed", "model", c.cfg.Model, "error", err)
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return firstNonBlank(res.Choices[0].Message.Content)
}
