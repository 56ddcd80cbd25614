package qdrantDB

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/qafarov/agribot/internal/domain/commonModels"
)

func TestBuildPoints_TruncatesStoredTextByRunes(t *testing.T) {
	chunks := []commonModels.DocChunk{
		{
			Doc:     commonModels.Document{Id: "doc-1", Name: "kitab.pdf"},
			ChunkId: "0a8f4b8e-1111-5222-8333-444455556666",
			Chunk:   strings.Repeat("ş", 1500),
			PageNum: 4,
		},
	}
	vectors := [][]float32{make([]float32, 4)}

	points := buildPoints(chunks, vectors)
	if len(points) != 1 {
		t.Fatalf("Expected 1 point, got %d", len(points))
	}

	text := points[0].Payload["text"].GetStringValue()
	if !utf8.ValidString(text) {
		t.Error("Stored text must stay valid UTF-8 after truncation")
	}
	if got := utf8.RuneCountInString(text); got != 1000 {
		t.Errorf("Stored text should be cut to 1000 chars, got %d", got)
	}
}

func TestBuildPoints_ShortTextStoredWhole(t *testing.T) {
	// 601 chars but over 1000 bytes; counts chars, not bytes
	text := "x" + strings.Repeat("ə", 600)
	chunks := []commonModels.DocChunk{
		{ChunkId: "0a8f4b8e-1111-5222-8333-444455556666", Chunk: text},
	}

	points := buildPoints(chunks, [][]float32{make([]float32, 4)})
	if got := points[0].Payload["text"].GetStringValue(); got != text {
		t.Errorf("Text under the character limit must be stored untouched, got %d chars", utf8.RuneCountInString(got))
	}
}
