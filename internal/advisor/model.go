package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/project-tktt/dream-jobs/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Model is the part of llms.Model used here
type Model interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

var errNoChoices = errors.New("no choices returned")

// NewOpenAIModel creates a chat model for any OpenAI-compatible endpoint
func NewOpenAIModel(cfg config.AIConfig) (Model, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("AI_API_KEY is not set")
	}
	llm, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithBaseURL(cfg.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return llm, nil
}

// complete sends a system + user prompt pair and returns the first choice
func complete(ctx context.Context, model Model, system, user string, options ...llms.CallOption) (string, error) {
	if model == nil {
		return "", errors.New("no model configured")
	}

	resp, err := model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}, options...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// cleanMarkdownJSON removes code fences some models wrap JSON answers in
func cleanMarkdownJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
