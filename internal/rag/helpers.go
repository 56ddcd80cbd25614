package rag

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/qafarov/agribot/internal/config"
	"github.com/qafarov/agribot/internal/domain/commonModels"
	"github.com/qafarov/agribot/internal/domain/jobModel"
	"github.com/qafarov/agribot/internal/metrics"
	"github.com/qafarov/agribot/internal/rag/llm"
	"github.com/qafarov/agribot/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans string) jobModel.Job {
	job.JobPayload.Answer = ans
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) ([]float32, bool) {
	*job = logOutput(*job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.Embed(ctx, job.JobPayload.Question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) (string, bool) {
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.vectorDB.GetCachedAnswer(ctx, emb)
	return ans, found
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) ([]commonModels.SearchHit, error) {
	*job = logOutput(*job, jobModel.VectorDBCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return s.vectorDB.Search(ctx, emb, config.AnswerTopK)
}

// executeAnswerStep turns retrieved chunks into the final answer. When no
// chunk qualifies as context the model is never called, the fixed
// not-found message is the answer.
func (s *service) executeAnswerStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, hits []commonModels.SearchHit, history []string) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	contextText, sources := buildContext(hits)
	if contextText == "" {
		return msgNotFound, nil
	}

	prompt := fmt.Sprintf(answerPrompt, contextText, job.JobPayload.Question)
	if len(history) > 0 {
		if len(history) > maxHistoryLines {
			history = history[len(history)-maxHistoryLines:]
		}
		prompt = "ƏVVƏLKİ SÖHBƏT:\n" + strings.Join(history, "\n") + "\n\n" + prompt
	}

	response, err := s.llmProvider.Generate(ctx, prompt, llm.Options{
		Temperature: config.AnswerTemperature,
		TopP:        config.AnswerTopP,
		MaxTokens:   config.AnswerMaxTokens,
		Stop:        []string{"\n\n\n", "SUAL:", "MƏTN:"},
	})
	if err != nil {
		return "", err
	}

	answer := cleanAnswer(strings.TrimSpace(response))
	if answer == "" {
		return msgEmptyAnswer, nil
	}

	if len(sources) > 0 && utf8.RuneCountInString(answer) > config.AnswerMinCharsForSources {
		job.JobPayload.Sources = sourceNames(sources)
		answer += sourcesHeader + formatSources(sources)
	}
	return answer, nil
}

func sourceNames(sources []sourceRef) []string {
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.filename
	}
	return names
}
