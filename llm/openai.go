package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/healthlang/ilera/config"
	"github.com/healthlang/ilera/schema"
)

const (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
)

type openAICompatProvider struct {
	name        string
	client      openai.Client
	model       string
	temperature float64
	topP        float64
	maxTokens   int
}

func newOpenAICompatProvider(cfg config.LLMConfig) *openAICompatProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		switch cfg.Provider {
		case "groq":
			baseURL = groqBaseURL
		case "gemini":
			baseURL = geminiBaseURL
		}
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &openAICompatProvider{
		name:        cfg.Provider,
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
	}
}

func (p *openAICompatProvider) Name() string { return p.name }

func (p *openAICompatProvider) Complete(ctx context.Context, req Request) (schema.ModelResult, error) {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.temperature
	}
	topP := req.TopP
	if topP == 0 {
		topP = p.topP
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.maxTokens
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    messages,
		Temperature: openai.Float(temperature),
		TopP:        openai.Float(topP),
		MaxTokens:   openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return schema.ModelResult{}, fmt.Errorf("%s completion failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return schema.ModelResult{}, fmt.Errorf("%s returned an empty completion", p.name)
	}
	return schema.ModelResult{
		Text:      resp.Choices[0].Message.Content,
		Provider:  p.name,
		TokensIn:  int(resp.Usage.PromptTokens),
		TokensOut: int(resp.Usage.CompletionTokens),
	}, nil
}
