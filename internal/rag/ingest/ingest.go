package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/qafarov/agribot/internal/config"
	"github.com/qafarov/agribot/internal/domain/commonModels"
	"github.com/qafarov/agribot/internal/domain/jobModel"
	"github.com/qafarov/agribot/internal/rag/embedding"
	"github.com/qafarov/agribot/internal/rag/extract"
	"github.com/qafarov/agribot/internal/rag/graphDB"
	"github.com/qafarov/agribot/internal/rag/vectorDB"
	"github.com/qafarov/agribot/pkg/logger_i"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

var logger = logger_i.NewLogger("Ingest")

// ProcessDocumentIngestion runs the full pipeline for one uploaded file:
// page extraction, chunking, entity extraction into the graph store, and
// embedding into the vector store. The two stores are written
// independently; a graph failure degrades the job but does not abort the
// vector ingest.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, extractor *extract.Extractor, graphStore graphDB.Store, embedder *embedding.Resilient, vectorDatabase vectorDB.DataProcessor) jobModel.Job {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	docName := job.JobPayload.IngestFileName
	docPath := job.JobPayload.IngestURL

	loggr.Debug("Processing document", "filename", docName, "path", docPath)

	job.CurrentStep = jobModel.IngestProcessing
	err := vectorDatabase.CreateCollection(ctx, config.KnowledgeDBName)
	if err != nil {
		loggr.Error("Error creating collection", "error", err)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Vector store is unavailable"
		return job
	}

	docType := getDocType(docPath)
	if docType == commonModels.ERR {
		loggr.Error("Unsupported document type", "filename", docName)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Unsupported document type"
		return job
	}

	doc := commonModels.Document{
		Id:                  job.Id,
		Name:                docName,
		LastIngestTimestamp: time.Now(),
		ContentType:         docType,
	}

	rawPages, err := extractText(docPath, doc.ContentType)
	if err != nil {
		loggr.Error("Error processing document", "error", err)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Error extracting document content"
		return job
	}

	chunker, err := NewChunker(config.ChunkSizeWords, config.ChunkOverlapWords)
	if err != nil {
		job.Status = jobModel.JobStatusError
		job.Error.Message = err.Error()
		return job
	}

	chunks := PrepareChunks(rawPages, doc, chunker)
	loggr.Debug("Processing document", "pages", len(rawPages), "chunks", len(chunks))

	job.CurrentStep = jobModel.GraphDBCall
	entities, edges, skipped := buildGraph(ctx, chunks, extractor, graphStore)
	job.JobPayload.EntitiesStored = entities
	job.JobPayload.EdgesStored = edges
	job.JobPayload.EdgesSkipped = skipped

	job.CurrentStep = jobModel.EmbeddingAPICall
	fallbacks, err := BatchIngest(ctx, chunks, vectorDatabase, embedder)
	if err != nil {
		job.Status = jobModel.JobStatusError
		loggr.Error("Error processing document", "error", err)
		return job
	}
	job.JobPayload.ChunksStored = len(chunks)
	job.JobPayload.FallbackVectors = fallbacks

	err = os.Remove(docPath)
	if err != nil {
		loggr.Error("Error removing file", "error", err)
	}
	job.Status = jobModel.JobStatusComplete
	return job
}

// buildGraph extracts entities from every chunk and merges them into the
// graph store. Extraction is best effort per chunk: a model that returns
// garbage for one chunk costs that chunk's entities, nothing more. With no
// graph store configured the whole step is skipped.
func buildGraph(ctx context.Context, chunks []commonModels.DocChunk, extractor *extract.Extractor, graphStore graphDB.Store) (entities, edges, skipped int) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if graphStore == nil || extractor == nil {
		loggr.Warn("Graph store not configured, skipping entity extraction")
		return 0, 0, 0
	}

	// ExtractionMaxChunks caps the number of LLM calls per document; 0
	// means every chunk goes through the extractor
	if config.ExtractionMaxChunks > 0 && len(chunks) > config.ExtractionMaxChunks {
		loggr.Warn("Capping extraction", "chunks", len(chunks), "cap", config.ExtractionMaxChunks)
		chunks = chunks[:config.ExtractionMaxChunks]
	}

	for _, chunk := range chunks {
		extraction, err := extractor.Extract(ctx, chunk.Chunk)
		if err != nil {
			loggr.Warn("Skipping chunk after failed extraction", "chunk", chunk.ChunkNum, "error", err)
			continue
		}
		if len(extraction.Entities) == 0 {
			continue
		}

		report, err := graphStore.UpsertGraph(ctx, extraction.Entities, extraction.Relationships)
		if err != nil {
			loggr.Warn("Skipping chunk after failed graph write", "chunk", chunk.ChunkNum, "error", err)
			continue
		}
		entities += report.Entities
		edges += report.Relationships
		skipped += report.Skipped
	}

	loggr.Info("Graph build done", "entities", entities, "edges", edges, "skipped", skipped)
	return entities, edges, skipped
}

// BatchIngest embeds and upserts chunks in batches. It returns how many
// chunks got a deterministic fallback vector instead of a model embedding.
func BatchIngest(ctx context.Context, chunks []commonModels.DocChunk, vectorDatabase vectorDB.DataProcessor, embedder *embedding.Resilient) (int, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	batchSize := config.IngestBatchSize
	totalFallbacks := 0

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		currentBatch := chunks[i:end]

		texts := make([]string, len(currentBatch))
		for j, c := range currentBatch {
			texts[j] = c.Chunk
		}

		loggr.Debug("Starting embedding call", "batch size", len(currentBatch))
		vectors, fallbacks := embedder.EmbedBatch(ctx, texts)
		totalFallbacks += fallbacks

		err := vectorDatabase.UpsertBatch(ctx, config.KnowledgeDBName, currentBatch, vectors)
		if err != nil {
			return totalFallbacks, fmt.Errorf("upserting to qdrant failed: %w", err)
		}
	}

	return totalFallbacks, nil
}
