package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/qafarov/agribot/internal/domain/commonModels"
	"github.com/qafarov/agribot/internal/rag/embedding"
	"github.com/qafarov/agribot/internal/rag/extract"
	"github.com/qafarov/agribot/internal/rag/graphDB"
	"github.com/qafarov/agribot/internal/rag/llm"
	"github.com/qafarov/agribot/pkg/logger_i"
)

func init() {
	logger_i.Init()
}

// --- Mocks ---

type fixedProvider struct {
	response string
}

func (f *fixedProvider) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	return f.response, nil
}

func newStubExtractor(response string) *extract.Extractor {
	return extract.NewExtractor(&fixedProvider{response: response})
}

type mockInnerEmbedder struct {
	embedFunc func(ctx context.Context, text string) ([]float32, error)
	batchFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockInnerEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return m.embedFunc(ctx, text)
}
func (m *mockInnerEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return m.batchFunc(ctx, texts)
}

type mockVectorDB struct {
	upsertFunc func(ctx context.Context, coll string, chunks []commonModels.DocChunk, vectors [][]float32) error
}

func (m *mockVectorDB) Search(ctx context.Context, v []float32, topK uint64) ([]commonModels.SearchHit, error) {
	return nil, nil
}
func (m *mockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	return "", false, nil
}
func (m *mockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	return nil
}
func (m *mockVectorDB) Count(ctx context.Context) (uint64, error)               { return 0, nil }
func (m *mockVectorDB) CreateCollection(ctx context.Context, name string) error { return nil }
func (m *mockVectorDB) UpsertBatch(ctx context.Context, coll string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	return m.upsertFunc(ctx, coll, chunks, vectors)
}

type mockGraphStore struct {
	upsertFunc func(ctx context.Context, entities []commonModels.Entity, relationships []commonModels.Relationship) (graphDB.UpsertReport, error)
}

func (m *mockGraphStore) UpsertGraph(ctx context.Context, entities []commonModels.Entity, relationships []commonModels.Relationship) (graphDB.UpsertReport, error) {
	return m.upsertFunc(ctx, entities, relationships)
}
func (m *mockGraphStore) Lookup(ctx context.Context, name string) ([]commonModels.EntityMatch, error) {
	return nil, nil
}
func (m *mockGraphStore) Counts(ctx context.Context) (int64, int64, error) { return 0, 0, nil }

// --- Unit Tests ---

func TestBatchIngest(t *testing.T) {
	ctx := context.Background()
	chunks := make([]commonModels.DocChunk, 150) // should trigger 2 batches (100 + 50)
	for i := range chunks {
		chunks[i] = commonModels.DocChunk{Chunk: "test content"}
	}

	callCount := 0
	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, coll string, c []commonModels.DocChunk, v [][]float32) error {
			callCount++
			if len(c) != len(v) {
				t.Errorf("Chunk/vector count mismatch: %d vs %d", len(c), len(v))
			}
			return nil
		},
	}

	emb := embedding.NewResilient(&mockInnerEmbedder{
		batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i := range out {
				out[i] = make([]float32, 1024)
			}
			return out, nil
		},
	}, 1024)

	fallbacks, err := BatchIngest(ctx, chunks, vDB, emb)
	if err != nil {
		t.Fatalf("BatchIngest failed: %v", err)
	}
	if callCount != 2 {
		t.Errorf("Expected 2 batches to be upserted, got %d", callCount)
	}
	if fallbacks != 0 {
		t.Errorf("Expected no fallback vectors, got %d", fallbacks)
	}
}

func TestBatchIngest_EmbedderDownUsesFallback(t *testing.T) {
	var stored [][]float32
	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, coll string, c []commonModels.DocChunk, v [][]float32) error {
			stored = v
			return nil
		},
	}

	emb := embedding.NewResilient(&mockInnerEmbedder{
		batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("connection refused")
		},
	}, 1024)

	chunks := []commonModels.DocChunk{{Chunk: "pomidor"}, {Chunk: "buğda"}}
	fallbacks, err := BatchIngest(context.Background(), chunks, vDB, emb)
	if err != nil {
		t.Fatalf("A dead embedder must not fail the ingest: %v", err)
	}
	if fallbacks != 2 {
		t.Errorf("Expected 2 fallback vectors, got %d", fallbacks)
	}
	if len(stored) != 2 || len(stored[0]) != 1024 {
		t.Errorf("Fallback vectors should still be stored at full dimension")
	}
}

func TestBatchIngest_UpsertError(t *testing.T) {
	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, coll string, c []commonModels.DocChunk, v [][]float32) error {
			return errors.New("upsert failed")
		},
	}
	emb := embedding.NewResilient(&mockInnerEmbedder{
		batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return make([][]float32, len(texts)), nil
		},
	}, 1024)

	_, err := BatchIngest(context.Background(), []commonModels.DocChunk{{Chunk: "hi"}}, vDB, emb)
	if err == nil {
		t.Error("Expected error from BatchIngest, got nil")
	}
}

func TestBuildGraph_SkipsFailedChunks(t *testing.T) {
	chunks := []commonModels.DocChunk{
		{ChunkNum: 0, Chunk: "pomidor fitoftor"},
		{ChunkNum: 1, Chunk: "buğda pası"},
	}

	calls := 0
	graphStore := &mockGraphStore{
		upsertFunc: func(ctx context.Context, e []commonModels.Entity, r []commonModels.Relationship) (graphDB.UpsertReport, error) {
			calls++
			if calls == 1 {
				return graphDB.UpsertReport{}, errors.New("neo4j down")
			}
			return graphDB.UpsertReport{Entities: 2, Relationships: 1, Skipped: 1}, nil
		},
	}

	extractor := newStubExtractor(`{"entities": [{"name": "x", "type": "Crop", "description": ""}], "relationships": []}`)

	entities, edges, skipped := buildGraph(context.Background(), chunks, extractor, graphStore)
	if calls != 2 {
		t.Errorf("Both chunks should reach the graph store, got %d calls", calls)
	}
	if entities != 2 || edges != 1 || skipped != 1 {
		t.Errorf("Counters wrong: entities=%d edges=%d skipped=%d", entities, edges, skipped)
	}
}

func TestBuildGraph_NoGraphStore(t *testing.T) {
	entities, edges, skipped := buildGraph(context.Background(), []commonModels.DocChunk{{Chunk: "x"}}, nil, nil)
	if entities != 0 || edges != 0 || skipped != 0 {
		t.Error("Without a graph store the step should be a no-op")
	}
}
