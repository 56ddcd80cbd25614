package rag

import (
	"context"
	"errors"
	"time"

	"github.com/qafarov/agribot/internal/adapter/utils"
	"github.com/qafarov/agribot/internal/config"
	"github.com/qafarov/agribot/internal/domain/commonModels"
	"github.com/qafarov/agribot/internal/domain/jobModel"
	"github.com/qafarov/agribot/internal/metrics"
	"github.com/qafarov/agribot/internal/rag/embedding"
	"github.com/qafarov/agribot/internal/rag/extract"
	"github.com/qafarov/agribot/internal/rag/graphDB"
	"github.com/qafarov/agribot/internal/rag/ingest"
	"github.com/qafarov/agribot/internal/rag/llm"
	"github.com/qafarov/agribot/internal/rag/vectorDB"
	"github.com/qafarov/agribot/pkg/logger_i"
)

// Service is the only surface the worker and handlers see; the stores and
// model clients behind it stay private to this package.
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	LookupEntity(ctx context.Context, name string) ([]commonModels.EntityMatch, error)
	Statistics(ctx context.Context) (commonModels.Stats, error)
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	graphStore  graphDB.Store
	llmProvider llm.Provider
	extractor   *extract.Extractor
	embedder    *embedding.Resilient
	logger      *logger_i.Logger
}

// NewService wires the pipeline together. graph may be nil when neo4j is
// unreachable; the service then runs vector-only and says so per job.
func NewService(vector vectorDB.DataProcessor, graph graphDB.Store, llmProvider llm.Provider, extractor *extract.Extractor, embedder *embedding.Resilient) Service {
	return &service{
		vectorDB:    vector,
		graphStore:  graph,
		llmProvider: llmProvider,
		extractor:   extractor,
		embedder:    embedder,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job, messageHistory []string) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	jobt.CurrentStep = jobModel.RAGCall

	// Embedding. A fallback vector is fine for ingestion but useless for
	// retrieval, so a query fails loudly instead of searching with noise.
	queryVector, usedFallback := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt)
	if usedFallback {
		return s.jobError(jobt, errors.New("embedding model unreachable"), "EMBEDDING_FAILURE", true)
	}

	// Cache Check
	cachedAnswer, found := s.executeCacheCheckStep(ctx, inMethodLogger, &jobt, queryVector)
	if found {
		return returnOutput(jobt, cachedAnswer)
	}

	// Vector DB Search
	hits, err := s.executeVectorSearchStep(processContext, inMethodLogger, &jobt, queryVector)
	if err != nil {
		return s.jobError(jobt, err, "VECTOR_DB_FAILURE", true)
	}

	// Answer Synthesis
	answer, err := s.executeAnswerStep(processContext, inMethodLogger, &jobt, hits, messageHistory)
	if err != nil {
		jobt.JobPayload.Answer = msgGenerationError
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE", true)
	}

	// Background Cache Save
	go func() {
		err := s.vectorDB.SaveToCache(ctx, utils.GetNewUUID(), queryVector, answer)
		if err != nil {
			s.logger.Error("Failed to save to cache")
		}
	}()

	return returnOutput(jobt, answer)
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Document_ingestion", time.Since(start)) }()
	j := ingest.ProcessDocumentIngestion(ctx, job, s.extractor, s.graphStore, s.embedder, s.vectorDB)
	if j.Status != jobModel.JobStatusComplete {
		return s.jobError(j, errors.New("ingest Document Failed"), "INGESTION_FAILURE", true)
	}
	return j
}

func (s *service) LookupEntity(ctx context.Context, name string) ([]commonModels.EntityMatch, error) {
	if s.graphStore == nil {
		return nil, errors.New("graph store is not available")
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("graph_lookup", time.Since(start)) }()
	return s.graphStore.Lookup(ctx, name)
}

// Statistics reports store sizes. Graph counts are zero when neo4j is not
// wired; the vector count is the hard requirement.
func (s *service) Statistics(ctx context.Context) (commonModels.Stats, error) {
	var stats commonModels.Stats

	vectors, err := s.vectorDB.Count(ctx)
	if err != nil {
		return stats, err
	}
	stats.Vectors = vectors

	if s.graphStore != nil {
		nodes, relationships, err := s.graphStore.Counts(ctx)
		if err != nil {
			s.logger.Warn("Graph statistics unavailable", "error", err)
		} else {
			stats.GraphNodes = nodes
			stats.GraphRelationships = relationships
		}
	}
	return stats, nil
}
