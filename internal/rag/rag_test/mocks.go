package rag_test

import (
	"context"

	"github.com/qafarov/agribot/internal/domain/commonModels"
	"github.com/qafarov/agribot/internal/rag/graphDB"
	"github.com/qafarov/agribot/internal/rag/llm"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnSearch           func(ctx context.Context, vectorVal []float32, topK uint64) ([]commonModels.SearchHit, error)
	OnGetCachedAnswer  func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache      func(ctx context.Context, id string, vector []float32, answer string) error
	OnCount            func(ctx context.Context) (uint64, error)
	OnCreateCollection func(ctx context.Context, name string) error
	OnUpsertBatch      func(ctx context.Context, name string, chunks []commonModels.DocChunk, vectors [][]float32) error
}

func (m *MockVectorDB) Search(ctx context.Context, v []float32, topK uint64) ([]commonModels.SearchHit, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, v, topK)
	}
	return []commonModels.SearchHit{}, nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, a)
	}
	return nil
}

func (m *MockVectorDB) Count(ctx context.Context) (uint64, error) {
	if m.OnCount != nil {
		return m.OnCount(ctx)
	}
	return 0, nil
}

func (m *MockVectorDB) CreateCollection(ctx context.Context, name string) error {
	if m.OnCreateCollection != nil {
		return m.OnCreateCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, chunks, vectors)
	}
	return nil
}

// MockEmbedder implements embedding.Embedder; wrap it in
// embedding.NewResilient before handing it to the service.
type MockEmbedder struct {
	OnEmbed      func(ctx context.Context, text string) ([]float32, error)
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text)
	}
	return make([]float32, 1024), nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, 1024)
	}
	return out, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string, opts llm.Options) (string, error)
	Calls      int
}

func (m *MockLLM) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	m.Calls++
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt, opts)
	}
	return "mocked llm response", nil
}

// MockGraphStore implements graphDB.Store
type MockGraphStore struct {
	OnUpsertGraph func(ctx context.Context, entities []commonModels.Entity, relationships []commonModels.Relationship) (graphDB.UpsertReport, error)
	OnLookup      func(ctx context.Context, name string) ([]commonModels.EntityMatch, error)
	OnCounts      func(ctx context.Context) (int64, int64, error)
}

func (m *MockGraphStore) UpsertGraph(ctx context.Context, entities []commonModels.Entity, relationships []commonModels.Relationship) (graphDB.UpsertReport, error) {
	if m.OnUpsertGraph != nil {
		return m.OnUpsertGraph(ctx, entities, relationships)
	}
	return graphDB.UpsertReport{Entities: len(entities), Relationships: len(relationships)}, nil
}

func (m *MockGraphStore) Lookup(ctx context.Context, name string) ([]commonModels.EntityMatch, error) {
	if m.OnLookup != nil {
		return m.OnLookup(ctx, name)
	}
	return nil, nil
}

func (m *MockGraphStore) Counts(ctx context.Context) (int64, int64, error) {
	if m.OnCounts != nil {
		return m.OnCounts(ctx)
	}
	return 0, 0, nil
}
