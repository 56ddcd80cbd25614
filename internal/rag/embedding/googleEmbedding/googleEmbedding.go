package googleEmbedding

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/qafarov/agribot/internal/config"
	"github.com/qafarov/agribot/internal/rag/embedding"
	"github.com/qafarov/agribot/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	maxRateLimitRetries = 2
	rateLimitBackoff    = 5 * time.Second
)

func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	s, ok := status.FromError(err)
	return ok && s.Code() == codes.ResourceExhausted
}

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension = int32(config.EmbeddingDimension)

type client struct {
	genAi *genai.Client
	model string
}

// GetGoogleEmbeddingClient is the hosted alternative to the local embedder.
// Selected with EMBEDDING_PROVIDER=gemini.
func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
		return
	}
	embeddingClient = &client{genAi: c, model: modelName}
	logger.Info("Google Embedding client created", "model", modelName)
	go closeClient(ctx, embeddingClient)
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := c.doCall(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, errors.New("empty embedding response")
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: t}},
		})
	}

	result, err := c.doCall(ctx, contents)
	for attempt := 0; isRateLimited(err) && attempt < maxRateLimitRetries; attempt++ {
		logger.Error("Rate limit hit! ", "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(rateLimitBackoff):
		}
		result, err = c.doCall(ctx, contents)
	}
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errors.New("empty embedding response")
	}

	vecs := make([][]float32, 0, len(result.Embeddings))
	for _, e := range result.Embeddings {
		vecs = append(vecs, e.Values)
	}
	return vecs, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content,
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
}
