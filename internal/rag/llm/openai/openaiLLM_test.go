package openai

import (
	"reflect"
	"testing"

	"github.com/qafarov/agribot/internal/rag/llm"
)

func TestBuildParams_CarriesAllOptions(t *testing.T) {
	stops := []string{"\n\n\n", "SUAL:", "MƏTN:"}
	params := buildParams("gpt-4o-mini", "sual", llm.Options{
		Temperature: 0.2,
		TopP:        0.9,
		MaxTokens:   150,
		Stop:        stops,
	})

	if !reflect.DeepEqual(params.Stop.OfStringArray, stops) {
		t.Errorf("Stop sequences lost: got %v, want %v", params.Stop.OfStringArray, stops)
	}
	// options arrive as float32, compare after the same conversion
	if float32(params.Temperature.Value) != 0.2 {
		t.Errorf("Temperature = %v; want 0.2", params.Temperature.Value)
	}
	if float32(params.TopP.Value) != 0.9 {
		t.Errorf("TopP = %v; want 0.9", params.TopP.Value)
	}
	if params.MaxCompletionTokens.Value != 150 {
		t.Errorf("MaxCompletionTokens = %v; want 150", params.MaxCompletionTokens.Value)
	}
}

func TestBuildParams_ZeroOptionsUseProviderDefaults(t *testing.T) {
	params := buildParams("gpt-4o-mini", "sual", llm.Options{})

	if len(params.Stop.OfStringArray) != 0 {
		t.Errorf("No stop sequences requested, got %v", params.Stop.OfStringArray)
	}
	if params.Temperature.Valid() || params.TopP.Valid() || params.MaxCompletionTokens.Valid() {
		t.Error("Zero options must be omitted so the provider defaults apply")
	}
}
