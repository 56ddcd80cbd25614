package commonModels

import "time"

type Document struct {
	Id                  string    `json:"doc_id"`
	Name                string    `json:"original_filename"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
	ContentType         DocType   `json:"contentType"`
}

// Page is one page of extracted document text, 1-indexed for user display.
type Page struct {
	Text    string `json:"text"`
	PageNum int    `json:"page_num"`
}

type DocChunk struct {
	Doc      Document
	ChunkId  string `json:"chunk_id"` // deterministic point id, see ingest.PrepareChunks
	Chunk    string `json:"text"`
	PageNum  int    `json:"page_num"`
	ChunkNum int    `json:"chunk_num"` // position within the whole document
}

// SearchHit is one ranked vector-search result with its stored metadata.
type SearchHit struct {
	ChunkId  string
	Score    float32
	Text     string
	DocId    string
	Filename string
	ChunkNum int
	PageNum  int
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"

// Stats mirrors what the /stats endpoint reports.
type Stats struct {
	GraphNodes         int64  `json:"graph_nodes"`
	GraphRelationships int64  `json:"graph_relationships"`
	Vectors            uint64 `json:"vectors"`
}
