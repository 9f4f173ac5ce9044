// Package llm provides a client for single-turn chat completions against an
// OpenAI-compatible API.
package llm

import (
	"context"
	"errors"
	"strings"

	"chat-relay-go/internal/config"
)

// ErrEmptyCompletion is returned when the API answers without any completion text.
var ErrEmptyCompletion = errors.New("llm: response contained no completion content")

// Client defines the interface for an LLM client.
type Client interface {
	// Complete sends prompt as the only user message and returns the first choice.
	// Prior conversation turns are never attached.
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewClient creates a new LLM client based on the SDK named in the config.
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch cfg.SDK {
	case "", "openai":
		return newOpenAIClient(cfg), nil
	case "langchain":
		return newLangchainClient(cfg)
	default:
		return nil, errors.New("llm: unsupported sdk " + cfg.SDK)
	}
}

// GenerationParams 控制生成行为，nil 字段表示使用服务端默认值。
type GenerationParams struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

func generationFromConfig(g config.LLMGenerationConfig) GenerationParams {
	var p GenerationParams
	if g.Temperature != 0 {
		t := g.Temperature
		p.Temperature = &t
	}
	if g.TopP != 0 {
		v := g.TopP
		p.TopP = &v
	}
	if g.MaxTokens != 0 {
		m := g.MaxTokens
		p.MaxTokens = &m
	}
	return p
}

func firstNonBlank(contents ...string) (string, error) {
	for _, c := range contents {
		if strings.TrimSpace(c) != "" {
			return c, nil
		}
	}
	return "", ErrEmptyCompletion
}
