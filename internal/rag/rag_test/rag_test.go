package rag_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/qafarov/agribot/internal/config"
	"github.com/qafarov/agribot/internal/domain/commonModels"
	"github.com/qafarov/agribot/internal/domain/jobModel"
	"github.com/qafarov/agribot/internal/rag"
	"github.com/qafarov/agribot/internal/rag/embedding"
	"github.com/qafarov/agribot/internal/rag/llm"
)

func longHit(text, filename string, page int) commonModels.SearchHit {
	// pad the text past the context filter threshold
	for len([]rune(text)) <= config.AnswerMinContextChars {
		text += " əlavə məzmun"
	}
	return commonModels.SearchHit{Text: text, Filename: filename, PageNum: page}
}

func TestProcessRequest_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB, l *MockLLM)
		expectedStatus jobModel.JobStatus
		expectedAnswer string
		expectLLMCalls int
		expectedErr    string
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, vec []float32, topK uint64) ([]commonModels.SearchHit, error) {
					return []commonModels.SearchHit{longHit("pomidorda fitoftor xəstəliyi", "kitab.pdf", 12)}, nil
				}
				l.OnGenerate = func(ctx context.Context, prompt string, opts llm.Options) (string, error) {
					return "final answer", nil
				}
			},
			expectedStatus: jobModel.JobStatusComplete,
			expectedAnswer: "final answer",
			expectLLMCalls: 1,
		},
		{
			name: "Success_Cache_Hit",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "cached answer", true, nil
				}
			},
			expectedStatus: jobModel.JobStatusComplete,
			expectedAnswer: "cached answer",
			expectLLMCalls: 0,
		},
		{
			name: "NotFound_Skips_LLM",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				// all hits are below the context length threshold
				v.OnSearch = func(ctx context.Context, vec []float32, topK uint64) ([]commonModels.SearchHit, error) {
					return []commonModels.SearchHit{{Text: "UOT 633.1", Filename: "kitab.pdf"}}, nil
				}
			},
			expectedStatus: jobModel.JobStatusComplete,
			expectedAnswer: "Verilmiş sənədlərdə bu sual üzrə məlumat tapılmadı.",
			expectLLMCalls: 0,
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				e.OnEmbed = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "EMBEDDING_FAILURE",
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, vec []float32, topK uint64) ([]commonModels.SearchHit, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "VECTOR_DB_FAILURE",
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, vec []float32, topK uint64) ([]commonModels.SearchHit, error) {
					return []commonModels.SearchHit{longHit("pomidorda fitoftor xəstəliyi", "kitab.pdf", 12)}, nil
				}
				l.OnGenerate = func(ctx context.Context, prompt string, opts llm.Options) (string, error) {
					return "", errors.New("provider down")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "LLM_GENERATION_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mVec, mLLM)

			s := rag.NewService(mVec, nil, mLLM, nil, embedding.NewResilient(mEmbed, config.EmbeddingDimension))

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			job := jobModel.Job{
				Id: "test-job",
				JobPayload: jobModel.JobPayload{
					Question: "test question",
				},
			}

			result := s.ProcessRequest(ctx, job, []string{})

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}

			if tt.expectedAnswer != "" && result.JobPayload.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %s, want %s", result.JobPayload.Answer, tt.expectedAnswer)
			}

			if mLLM.Calls != tt.expectLLMCalls && tt.expectedErr == "" {
				t.Errorf("LLM call count got %d, want %d", mLLM.Calls, tt.expectLLMCalls)
			}

			if tt.expectedErr != "" && result.Error.Code != http.StatusInternalServerError {
				t.Errorf("Error Code got %d, want %s", result.Error.Code, tt.expectedErr)
			}
		})
	}
}

func TestProcessRequest_AppendsSources(t *testing.T) {
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, vec []float32, topK uint64) ([]commonModels.SearchHit, error) {
			return []commonModels.SearchHit{
				longHit("fitoftor xəstəliyinə qarşı bordo məhlulu", "pomidor.pdf", 12),
				longHit("xəstəliyin qarşısının alınması", "pomidor.pdf", 7),
			}, nil
		},
	}
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, prompt string, opts llm.Options) (string, error) {
			return "Fitoftor xəstəliyinə qarşı bordo məhlulu tətbiq edilməlidir.", nil
		},
	}

	s := rag.NewService(mVec, nil, mLLM, nil, embedding.NewResilient(&MockEmbedder{}, config.EmbeddingDimension))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	result := s.ProcessRequest(ctx, jobModel.Job{Id: "j", JobPayload: jobModel.JobPayload{Question: "q"}}, nil)

	if !strings.Contains(result.JobPayload.Answer, "📚 **Mənbələr:** pomidor.pdf (səh. 7, səh. 12)") {
		t.Errorf("Answer missing source attribution: %q", result.JobPayload.Answer)
	}
	if len(result.JobPayload.Sources) != 1 || result.JobPayload.Sources[0] != "pomidor.pdf" {
		t.Errorf("Job sources got %v", result.JobPayload.Sources)
	}
}

func TestIngestDocument_Scenarios(t *testing.T) {
	dummyFile := "test_ingest.txt"
	content := []byte(strings.Repeat("pomidor bitkisində fitoftor xəstəliyi geniş yayılmışdır ", 4))
	os.WriteFile(dummyFile, content, 0644)
	defer os.Remove(dummyFile)

	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB)
		expectedStatus jobModel.JobStatus
		expectedErr    string
	}{
		{
			name:           "Ingestion_Success",
			setupMocks:     func(e *MockEmbedder, v *MockVectorDB) {},
			expectedStatus: jobModel.JobStatusComplete,
		},
		{
			name: "Failure_Collection_Creation",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				v.OnCreateCollection = func(ctx context.Context, name string) error {
					return errors.New("connection refused")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "INGESTION_FAILURE",
		},
		{
			name: "Failure_Batch_Upsert",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				v.OnUpsertBatch = func(ctx context.Context, coll string, chunks []commonModels.DocChunk, vectors [][]float32) error {
					return errors.New("disk full")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "INGESTION_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}

			tt.setupMocks(mEmbed, mVec)

			s := rag.NewService(mVec, nil, &MockLLM{}, nil, embedding.NewResilient(mEmbed, config.EmbeddingDimension))

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "ingest-trace")
			job := jobModel.Job{
				Id: "ingest-job-1",
				JobPayload: jobModel.JobPayload{
					IngestFileName: "test_ingest.txt",
					IngestURL:      dummyFile,
				},
			}

			// Re-create file if deleted by previous successful test run
			if _, err := os.Stat(dummyFile); os.IsNotExist(err) {
				os.WriteFile(dummyFile, content, 0644)
			}

			result := s.IngestDocument(ctx, job)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}

			if tt.expectedErr != "" && result.Error.Code != http.StatusInternalServerError {
				t.Errorf("Error Code got %d, want %s", result.Error.Code, tt.expectedErr)
			}

			if tt.expectedErr == "" && result.JobPayload.ChunksStored == 0 {
				t.Error("Successful ingest should report stored chunks")
			}
		})
	}
}

func TestLookupEntity_NoGraphStore(t *testing.T) {
	s := rag.NewService(&MockVectorDB{}, nil, &MockLLM{}, nil, embedding.NewResilient(&MockEmbedder{}, config.EmbeddingDimension))
	if _, err := s.LookupEntity(context.Background(), "pomidor"); err == nil {
		t.Error("Expected error when graph store is missing")
	}
}

func TestStatistics(t *testing.T) {
	mVec := &MockVectorDB{
		OnCount: func(ctx context.Context) (uint64, error) { return 42, nil },
	}
	mGraph := &MockGraphStore{
		OnCounts: func(ctx context.Context) (int64, int64, error) { return 7, 3, nil },
	}

	s := rag.NewService(mVec, mGraph, &MockLLM{}, nil, embedding.NewResilient(&MockEmbedder{}, config.EmbeddingDimension))

	stats, err := s.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if stats.Vectors != 42 || stats.GraphNodes != 7 || stats.GraphRelationships != 3 {
		t.Errorf("Stats mismatch: %+v", stats)
	}
}
