package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD                     = false
	LOG_LEVEL_PROD              = slog.LevelInfo
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5
	CacheSimilarityCutoff       = 0.97

	// EmbeddingDimension is the fixed width of every stored vector. Whatever
	// the embedding model returns is zero-padded or truncated to this size.
	EmbeddingDimension int = 1024
	KnowledgeDBName        = "agri-knowledge"
	SemanticCacheDBName    = "semantic-cache"

	// chunking
	ChunkSizeWords    = 600
	ChunkOverlapWords = 100
	MinChunkChars     = 50
	MaxIngestPages    = 10
	IngestBatchSize   = 100

	// extraction
	MaxExtractionChars    = 1000
	ExtractionTemperature = 0.3
	ExtractionMaxChunks   = 0 // 0 means every chunk goes through the extractor

	// answering
	AnswerTopK               = 10
	AnswerMaxContextChunks   = 5
	AnswerMinContextChars    = 100
	AnswerMinCharsForSources = 20
	AnswerMaxPagesPerSource  = 3
	AnswerTemperature        = 0.2
	AnswerMaxTokens          = 150
	AnswerTopP               = 0.9

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	// serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	// job requests buffer limit
	BufferLimit = 100

	// vectorDB
	QdrantHost     = ""
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false
	QdrantPoolSize = 1

	// models
	OllamaAnswerModel    = "llama3.1"
	OllamaExtractModel   = "gemma:2b"
	OllamaEmbeddingModel = "nomic-embed-text"
	OllamaTimeout        = 120 * time.Second

	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIModelName      = "gpt-4o-mini"

	// graphDB
	Neo4jDefaultURI = "bolt://localhost:7687"

	// redis
	RedisJobStore     = 0
	RedisMessageStore = 1

	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour
	RedisPassword        = ""
)

// provider selection, overridable per deployment
var (
	LLMProvider       = envOr("LLM_PROVIDER", "ollama")
	EmbeddingProvider = envOr("EMBEDDING_PROVIDER", "ollama")

	OllamaBaseURL = envOr("OLLAMA_HOST", "http://localhost:11434")
	RedisAddr     = envOr("REDIS_ADDR", "127.0.0.1:6379")

	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	Neo4jURI      = envOr("NEO4J_URI", Neo4jDefaultURI)
	Neo4jUsername = envOr("NEO4J_USERNAME", "neo4j")
	Neo4jPassword = os.Getenv("NEO4J_PASSWORD")

	AuthToken    = os.Getenv("AUTH_TOKEN")
	NoAuthBypass = os.Getenv("AUTH_TOKEN") == ""
)

func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
