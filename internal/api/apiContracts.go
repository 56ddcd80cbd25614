package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

type IngestReport struct {
	ChunksStored    int `json:"chunks_stored"`
	EntitiesStored  int `json:"entities_stored"`
	EdgesStored     int `json:"edges_stored"`
	EdgesSkipped    int `json:"edges_skipped"`
	FallbackVectors int `json:"fallback_vectors"`
}

type Result struct {
	Status              string        `json:"status"`
	RAGExternalResponse *RAGResponse  `json:"rag_response,omitempty"`
	IngestReport        *IngestReport `json:"ingest_report,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type EntityMatchResponse struct {
	Entity          string   `json:"entity"`
	Types           []string `json:"types"`
	RelatedEntities []string `json:"related_entities"`
}

type GraphLookupResponse struct {
	Query   string                `json:"query"`
	Matches []EntityMatchResponse `json:"matches"`
}

type StatsResponse struct {
	GraphNodes         int64  `json:"graph_nodes"`
	GraphRelationships int64  `json:"graph_relationships"`
	Vectors            uint64 `json:"vectors"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required" `
	ChatID  string `json:"chatID,omitempty" `
}
type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}

type IngestDocumentRequest struct {
	DocumentName string `json:"document_name" validate:"required"`
}
