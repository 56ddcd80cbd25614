package gemini

import (
	"context"
	"errors"
	"sync"

	"github.com/qafarov/agribot/internal/rag/llm"
	"github.com/qafarov/agribot/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

// GetGeminiClient is an alternative Provider for deployments without a local
// model. Selected with LLM_PROVIDER=gemini.
func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Gemini client created", "model", modelName)
	go closeClient(ctx, geminiClient)
}

func (c *llmClient) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	contentConfig := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		t := opts.Temperature
		contentConfig.Temperature = &t
	}
	if opts.TopP > 0 {
		p := opts.TopP
		contentConfig.TopP = &p
	}
	if opts.MaxTokens > 0 {
		contentConfig.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if len(opts.Stop) > 0 {
		contentConfig.StopSequences = opts.Stop
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(prompt),
		contentConfig,
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", errors.New("gemini returned empty result")
	}
	return result.Text(), nil
}

func closeClient(ctx context.Context, llmc *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llmc.client = nil
	llmc.modelName = ""
}
