package rag

import (
	"strings"
	"testing"

	"github.com/qafarov/agribot/internal/domain/commonModels"
)

func pad(text string) string {
	for len([]rune(text)) <= 100 {
		text += " əlavə məzmun haqqında ətraflı izahat"
	}
	return text
}

func TestBuildContext(t *testing.T) {
	hits := []commonModels.SearchHit{
		{Text: pad("birinci hissə"), Filename: "a.pdf", PageNum: 3},
		{Text: "qısa", Filename: "b.pdf", PageNum: 1}, // filtered out
		{Text: pad("ikinci hissə"), Filename: "a.pdf", PageNum: 5},
		{Text: pad("üçüncü hissə"), Filename: "", DocId: "doc-9", PageNum: 0},
	}

	contextText, sources := buildContext(hits)

	if parts := strings.Split(contextText, "\n\n---\n\n"); len(parts) != 3 {
		t.Errorf("Expected 3 context parts, got %d", len(parts))
	}
	if strings.Contains(contextText, "qısa") {
		t.Error("Short hits must not reach the context")
	}

	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}
	if sources[0].filename != "a.pdf" || len(sources[0].pages) != 2 {
		t.Errorf("First source wrong: %+v", sources[0])
	}
	// filename falls back to the document id, page 0 is not listed
	if sources[1].filename != "doc-9" || len(sources[1].pages) != 0 {
		t.Errorf("Second source wrong: %+v", sources[1])
	}
}

func TestBuildContext_CapsContextNotSources(t *testing.T) {
	var hits []commonModels.SearchHit
	for i := 1; i <= 8; i++ {
		hits = append(hits, commonModels.SearchHit{Text: pad("hissə"), Filename: "f.pdf", PageNum: i})
	}

	contextText, sources := buildContext(hits)

	if parts := strings.Split(contextText, "\n\n---\n\n"); len(parts) != 5 {
		t.Errorf("Context should be capped at 5 parts, got %d", len(parts))
	}
	// all 8 hits still contribute attribution
	if len(sources) != 1 || len(sources[0].pages) != 8 {
		t.Errorf("Sources should cover every qualifying hit: %+v", sources)
	}
}

func TestBuildContext_Empty(t *testing.T) {
	contextText, sources := buildContext(nil)
	if contextText != "" || len(sources) != 0 {
		t.Error("No hits should give empty context")
	}
}

func TestCleanAnswer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips uot line",
			input:    "UOT 633.1:632.4\nPomidorda fitoftor geniş yayılıb.",
			expected: "Pomidorda fitoftor geniş yayılıb.",
		},
		{
			name:     "strips short publisher line",
			input:    "Cavab budur.\nBakı: Elm nəşriyyatı, 2020",
			expected: "Cavab budur.",
		},
		{
			name:     "keeps long line mentioning publisher",
			input:    "Bu nəşriyyat haqqında uzun bir cümlədir və silinməməlidir, çünki həddən artıq uzundur.",
			expected: "Bu nəşriyyat haqqında uzun bir cümlədir və silinməməlidir, çünki həddən artıq uzundur.",
		},
		{
			name:     "strips reviewer and professor lines",
			input:    "Rəyçilər: A. Məmmədov\nProfessor H. Əliyev\nƏsl cavab.",
			expected: "Əsl cavab.",
		},
		{
			name:     "all lines filtered keeps original",
			input:    "UOT 633.1",
			expected: "UOT 633.1",
		},
		{
			name:     "trims and drops blank lines",
			input:    "  birinci  \n\n  ikinci  ",
			expected: "birinci\nikinci",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanAnswer(tt.input); got != tt.expected {
				t.Errorf("cleanAnswer(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatSources(t *testing.T) {
	sources := []sourceRef{
		{filename: "kitab.pdf", pages: []int{12, 3, 7, 25}},
		{filename: "məqalə.docx"},
	}

	got := formatSources(sources)
	want := "kitab.pdf (səh. 3, səh. 7, səh. 12...) | məqalə.docx"
	if got != want {
		t.Errorf("formatSources = %q; want %q", got, want)
	}
}

func TestFormatSources_NoEllipsisAtThreePages(t *testing.T) {
	got := formatSources([]sourceRef{{filename: "kitab.pdf", pages: []int{2, 1, 3}}})
	want := "kitab.pdf (səh. 1, səh. 2, səh. 3)"
	if got != want {
		t.Errorf("formatSources = %q; want %q", got, want)
	}
}
