package extract

import (
	"context"
	"fmt"

	"github.com/qafarov/agribot/internal/adapter/utils"
	"github.com/qafarov/agribot/internal/config"
	"github.com/qafarov/agribot/internal/domain/commonModels"
	"github.com/qafarov/agribot/internal/rag/llm"
	"github.com/qafarov/agribot/pkg/logger_i"
)

const extractionPrompt = `Extract agricultural entities from this Azerbaijani text. Return ONLY a JSON object:

{"entities": [{"name": "entity name", "type": "Crop|Disease|Technique|Chemical", "description": "brief description"}], "relationships": [{"from": "entity1", "to": "entity2", "type": "TREATS|AFFECTS|PREVENTS|RELATED_TO"}]}

TEXT: %s

Return ONLY valid JSON:`

// Extractor turns raw chunk text into graph entities and relationships
// using an LLM.
type Extractor struct {
	provider llm.Provider
	logger   *logger_i.Logger
}

func NewExtractor(provider llm.Provider) *Extractor {
	return &Extractor{
		provider: provider,
		logger:   logger_i.NewLogger("Extractor"),
	}
}

// Extract asks the model for entities in the chunk. Only the first
// MaxExtractionChars of the text are sent; an empty but well-formed
// extraction is a valid result, not an error.
func (e *Extractor) Extract(ctx context.Context, text string) (commonModels.Extraction, error) {
	loggr := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	text = utils.TruncateRunes(text, config.MaxExtractionChars)

	response, err := e.provider.Generate(ctx, fmt.Sprintf(extractionPrompt, text), llm.Options{
		Temperature: config.ExtractionTemperature,
	})
	if err != nil {
		return commonModels.Extraction{}, fmt.Errorf("extraction call failed: %w", err)
	}

	extraction, err := ParseExtraction(response)
	if err != nil {
		loggr.Warn("Unparseable extraction response", "error", err)
		return commonModels.Extraction{}, err
	}

	loggr.Debug("Extracted from chunk", "entities", len(extraction.Entities), "relationships", len(extraction.Relationships))
	return extraction, nil
}
