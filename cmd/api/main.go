package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/qafarov/agribot/internal/config"
	"github.com/qafarov/agribot/internal/data/store"
	jobmodel "github.com/qafarov/agribot/internal/domain/jobModel"
	"github.com/qafarov/agribot/internal/handlers"
	"github.com/qafarov/agribot/internal/job"
	"github.com/qafarov/agribot/internal/rag"
	"github.com/qafarov/agribot/internal/rag/embedding"
	"github.com/qafarov/agribot/internal/rag/embedding/googleEmbedding"
	"github.com/qafarov/agribot/internal/rag/embedding/ollamaEmbedding"
	"github.com/qafarov/agribot/internal/rag/extract"
	"github.com/qafarov/agribot/internal/rag/graphDB"
	"github.com/qafarov/agribot/internal/rag/graphDB/neo4jDB"
	"github.com/qafarov/agribot/internal/rag/llm"
	"github.com/qafarov/agribot/internal/rag/llm/gemini"
	"github.com/qafarov/agribot/internal/rag/llm/ollama"
	"github.com/qafarov/agribot/internal/rag/llm/openai"
	"github.com/qafarov/agribot/internal/rag/vectorDB/qdrantDB"
	"github.com/qafarov/agribot/internal/server"
	"github.com/qafarov/agribot/internal/worker"
	"github.com/qafarov/agribot/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	jobStore := store.GetRedisJobStore(serviceContext)
	messageStore := store.GetRedisMessageStore(serviceContext)
	if jobStore == nil || messageStore == nil {
		logger.Error("Redis stores are offline, falling back to in-memory stores")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore()
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.MessageStore = messageStore
	}
	service := job.InitJobService(serviceConfig)

	vectorDB := qdrantDB.GetQdrantClient(serviceContext)
	llmProvider, extractProvider := buildLLMProviders(serviceContext, logger)
	embedder := buildEmbedder(serviceContext, logger)
	pingProvider(serviceContext, llmProvider, logger)

	if vectorDB == nil || embedder == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "Embedder", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}

	// The graph store is optional. Without it the service still answers from
	// vectors, it just loses entity extraction and /graph lookups.
	var graphStore graphDB.Store
	if holder := neo4jDB.GetGraphClient(serviceContext); holder != nil {
		graphStore = holder
	} else {
		logger.Warn("Neo4j is offline, running vector-only")
	}

	ragService := rag.NewService(vectorDB, graphStore, llmProvider, extract.NewExtractor(extractProvider), embedder)

	handlers.InitJobHandler(service, ragService)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// buildLLMProviders picks the answering and extraction providers from
// LLM_PROVIDER. Ollama runs a smaller dedicated model for extraction;
// the hosted providers reuse one client for both.
func buildLLMProviders(ctx context.Context, logger *logger_i.Logger) (llm.Provider, llm.Provider) {
	switch config.LLMProvider {
	case "gemini":
		p := gemini.GetGeminiClient(ctx, config.GeminiModelName, config.GeminiAPIKey)
		return p, p
	case "openai":
		p := openai.NewClient(config.OpenAIAPIKey, config.OpenAIModelName)
		return p, p
	case "ollama":
		return ollama.NewClient(config.OllamaBaseURL, config.OllamaAnswerModel),
			ollama.NewClient(config.OllamaBaseURL, config.OllamaExtractModel)
	default:
		logger.Error("Unknown LLM provider", "LLM_PROVIDER", config.LLMProvider)
		return nil, nil
	}
}

// pingProvider surfaces a dead model daemon at startup instead of on the
// first job. The server still starts; jobs will error until it recovers.
func pingProvider(ctx context.Context, provider llm.Provider, logger *logger_i.Logger) {
	p, ok := provider.(interface{ Ping(context.Context) error })
	if !ok {
		return
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		logger.Warn("LLM provider is unreachable", "error", err)
	}
}

func buildEmbedder(ctx context.Context, logger *logger_i.Logger) *embedding.Resilient {
	var inner embedding.Embedder
	switch config.EmbeddingProvider {
	case "gemini":
		inner = googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GeminiAPIKey)
	case "ollama":
		inner = ollamaEmbedding.NewClient(config.OllamaBaseURL, config.OllamaEmbeddingModel)
	default:
		logger.Error("Unknown embedding provider", "EMBEDDING_PROVIDER", config.EmbeddingProvider)
		return nil
	}
	if inner == nil {
		return nil
	}
	return embedding.NewResilient(inner, config.EmbeddingDimension)
}
