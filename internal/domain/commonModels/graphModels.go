package commonModels

// Entity is a named domain concept (crop, disease, ...) extracted from a
// chunk of text. Type is validated against a fixed vocabulary before it is
// allowed anywhere near the graph schema.
type Entity struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Relationship is a directed typed edge between two entities, referenced by
// name. Endpoints that cannot be resolved inside the same batch are skipped.
type Relationship struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// Extraction is the structured output the LLM produces for one chunk.
type Extraction struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}

// EntityMatch is one row of a graph lookup by name.
type EntityMatch struct {
	Name    string   `json:"entity"`
	Types   []string `json:"types"`
	Related []string `json:"related_entities"`
}
