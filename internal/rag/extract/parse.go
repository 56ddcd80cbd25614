package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/qafarov/agribot/internal/domain/commonModels"
)

var ErrNoJSON = errors.New("response contains no JSON object")

// ParseExtraction pulls the JSON object out of an LLM response. Models
// often wrap the object in prose or markdown fences, so everything outside
// the outermost braces is discarded.
func ParseExtraction(response string) (commonModels.Extraction, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return commonModels.Extraction{}, ErrNoJSON
	}

	var extraction commonModels.Extraction
	if err := json.Unmarshal([]byte(response[start:end+1]), &extraction); err != nil {
		return commonModels.Extraction{}, fmt.Errorf("malformed extraction JSON: %w", err)
	}
	return extraction, nil
}
