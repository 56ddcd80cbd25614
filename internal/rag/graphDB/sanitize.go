package graphDB

import "strings"

// Node labels and relationship types end up spliced into query text (the
// query language has no parameters for schema identifiers), so nothing the
// model produced may pass through unvalidated. Unknown values collapse to a
// generic catch-all instead of reaching the schema layer.

const (
	LabelCrop      = "Crop"
	LabelDisease   = "Disease"
	LabelTechnique = "Technique"
	LabelChemical  = "Chemical"
	LabelGeneric   = "Entity"

	RelTreats    = "TREATS"
	RelAffects   = "AFFECTS"
	RelPrevents  = "PREVENTS"
	RelGeneric   = "RELATED_TO"
)

var allowedLabels = map[string]string{
	strings.ToLower(LabelCrop):      LabelCrop,
	strings.ToLower(LabelDisease):   LabelDisease,
	strings.ToLower(LabelTechnique): LabelTechnique,
	strings.ToLower(LabelChemical):  LabelChemical,
}

var allowedRelationships = map[string]bool{
	RelTreats:   true,
	RelAffects:  true,
	RelPrevents: true,
	RelGeneric:  true,
}

// EntityLabel maps a raw extracted type onto the fixed label vocabulary.
// The extractor sometimes echoes the whole "Crop|Disease|..." hint back;
// only the first segment counts.
func EntityLabel(raw string) string {
	if i := strings.IndexByte(raw, '|'); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(raw)
	if label, ok := allowedLabels[strings.ToLower(raw)]; ok {
		return label
	}
	return LabelGeneric
}

// RelationshipType normalizes a raw relationship type (spaces and pipes to
// underscores, upper-cased, non [A-Z0-9_] stripped) and collapses anything
// outside the vocabulary to RELATED_TO.
func RelationshipType(raw string) string {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "|", "_")

	var b strings.Builder
	for _, r := range normalized {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	normalized = b.String()

	if len(normalized) < 2 || !allowedRelationships[normalized] {
		return RelGeneric
	}
	return normalized
}
