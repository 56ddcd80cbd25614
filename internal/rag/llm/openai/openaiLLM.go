package openai

import (
	"context"
	"errors"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/qafarov/agribot/internal/rag/llm"
	"github.com/qafarov/agribot/pkg/logger_i"
)

// Client wraps the OpenAI chat completions API behind the Provider
// interface. Selected with LLM_PROVIDER=openai.
type Client struct {
	client oa.Client
	model  string
	logger *logger_i.Logger
}

func NewClient(apiKey string, model string) llm.Provider {
	return &Client{
		client: oa.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger_i.NewLogger("llm_openai"),
	}
}

func buildParams(model string, prompt string, opts llm.Options) oa.ChatCompletionNewParams {
	params := oa.ChatCompletionNewParams{
		Model: oa.ChatModel(model),
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.UserMessage(prompt),
		},
	}
	if opts.Temperature > 0 {
		params.Temperature = oa.Float(float64(opts.Temperature))
	}
	if opts.TopP > 0 {
		params.TopP = oa.Float(float64(opts.TopP))
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = oa.Int(int64(opts.MaxTokens))
	}
	if len(opts.Stop) > 0 {
		params.Stop = oa.ChatCompletionNewParamsStopUnion{OfStringArray: opts.Stop}
	}
	return params
}

func (c *Client) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, buildParams(c.model, prompt, opts))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
