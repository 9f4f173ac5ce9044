package llm

import (
	"context"
	"fmt"
	"strings"

	"chat-relay-go/internal/config"
	"chat-relay-go/pkg/log"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

type langchainClient struct {
	cfg     config.LLMConfig
	callOps []llms.CallOption
	llm     *lcopenai.LLM
}

func newLangchainClient(cfg config.LLMConfig) (*langchainClient, error) {
	opts := []lcopenai.Option{
		lcopenai.WithToken(cfg.APIKey),
		lcopenai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")))
	}
	model, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create langchain OpenAI client: %w", err)
	}

	gen := generationFromConfig(cfg.Generation)
	var callOps []llms.CallOption
	if gen.Temperature != nil {
		callOps = append(callOps, llms.WithTemperature(*gen.Temperature))
	}
	if gen.TopP != nil {
		callOps = append(callOps, llms.WithTopP(*gen.TopP))
	}
	if gen.MaxTokens != nil {
		callOps = append(callOps, llms.WithMaxTokens(*gen.MaxTokens))
	}

	return &langchainClient{cfg: cfg, callOps: callOps, llm: model}, nil
}

func (c *langchainClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	messages := make([]llms.MessageContent, 0, 2)
	if c.cfg.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, c.cfg.SystemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	resp, err := c.llm.GenerateContent(ctx, messages, c.callOps...)
	if err != nil {
		log.Errorw("langchain chat completion failed", "model", c.cfg.Model, "error", err)
		return "", fmt.Errorf("langchain chat completion failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", ErrEmptyCompletion
	}
	return firstNonBlank(resp.Choices[0].Content)
}
