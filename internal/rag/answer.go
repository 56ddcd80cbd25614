package rag

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/qafarov/agribot/internal/config"
	"github.com/qafarov/agribot/internal/domain/commonModels"
)

const answerPrompt = `Sən kənd təsərrüfatı üzrə ekspertsən. Aşağıdakı mətnə əsasən suala QISA və KONKRET cavab ver.

MƏTN:
%s

SUAL: %s

TƏLİMAT:
- Yalnız sualın cavabını ver
- 2-3 cümlədən çox yazma
- Konkret adlar, rəqəmlər və faktlar bildir
- Əgər mətnlərdə dəqiq cavab yoxdursa, "Məlumat tapılmadı" de
- Mətndən əlavə məlumat əlavə etmə

CAVAB (qısa və konkret):`

const (
	msgNotFound        = "Verilmiş sənədlərdə bu sual üzrə məlumat tapılmadı."
	msgGenerationError = "Cavab yaradılarkən xəta baş verdi."
	msgEmptyAnswer     = "Cavab yaradıla bilmədi."

	sourcesHeader = "\n\n📚 **Mənbələr:** "
	unknownSource = "Naməlum mənbə"

	maxHistoryLines = 6
)

type sourceRef struct {
	filename string
	pages    []int
}

// buildContext selects the retrieved chunks worth showing the model. Hits
// whose text is too short are usually page headers or metadata and get
// dropped; the rest contribute both context (capped at
// AnswerMaxContextChunks) and source attribution. Source order follows hit
// relevance order.
func buildContext(hits []commonModels.SearchHit) (string, []sourceRef) {
	var contextParts []string
	var sources []sourceRef
	sourceIndex := map[string]int{}

	for _, hit := range hits {
		if utf8.RuneCountInString(hit.Text) <= config.AnswerMinContextChars {
			continue
		}
		contextParts = append(contextParts, hit.Text)

		filename := hit.Filename
		if filename == "" {
			filename = hit.DocId
		}
		if filename == "" {
			filename = unknownSource
		}

		idx, seen := sourceIndex[filename]
		if !seen {
			sourceIndex[filename] = len(sources)
			sources = append(sources, sourceRef{filename: filename})
			idx = len(sources) - 1
		}
		if hit.PageNum > 0 && !containsInt(sources[idx].pages, hit.PageNum) {
			sources[idx].pages = append(sources[idx].pages, hit.PageNum)
		}
	}

	if len(contextParts) > config.AnswerMaxContextChunks {
		contextParts = contextParts[:config.AnswerMaxContextChunks]
	}
	return strings.Join(contextParts, "\n\n---\n\n"), sources
}

// cleanAnswer strips the metadata lines scanned books leak into answers:
// UOT classification codes, publisher imprints, reviewer and professor
// bylines. If nothing survives the filter the original answer stands.
func cleanAnswer(answer string) string {
	var cleanLines []string
	for _, line := range strings.Split(answer, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "uot"):
			continue
		case strings.Contains(lower, "nəşriyyat") && utf8.RuneCountInString(line) < 50:
			continue
		case strings.HasPrefix(lower, "rəyçilər:"):
			continue
		case strings.HasPrefix(lower, "professor "):
			continue
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			cleanLines = append(cleanLines, trimmed)
		}
	}
	if len(cleanLines) == 0 {
		return answer
	}
	return strings.Join(cleanLines, "\n")
}

// formatSources renders "file (səh. 1, səh. 2) | other" attribution. At
// most AnswerMaxPagesPerSource pages are listed per file, the overflow is
// marked with an ellipsis.
func formatSources(sources []sourceRef) string {
	var formatted []string
	for _, src := range sources {
		if len(src.pages) == 0 {
			formatted = append(formatted, src.filename)
			continue
		}

		pages := append([]int(nil), src.pages...)
		sort.Ints(pages)

		shown := pages
		if len(shown) > config.AnswerMaxPagesPerSource {
			shown = shown[:config.AnswerMaxPagesPerSource]
		}
		var pageParts []string
		for _, p := range shown {
			pageParts = append(pageParts, fmt.Sprintf("səh. %d", p))
		}
		pagesStr := strings.Join(pageParts, ", ")
		if len(pages) > config.AnswerMaxPagesPerSource {
			pagesStr += "..."
		}
		formatted = append(formatted, src.filename+" ("+pagesStr+")")
	}
	return strings.Join(formatted, " | ")
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

