package vectorstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/ragchat/internal/domain/rag"
)

func TestMemoryVectorStore_SearchOrdersByScoreDescending(t *testing.T) {
	store := NewMemoryVectorStore()
	docID := uuid.New()

	chunks := []rag.Chunk{
		{ID: uuid.New(), DocumentID: docID, Index: 0, Content: "low match"},
		{ID: uuid.New(), DocumentID: docID, Index: 1, Content: "high match"},
		{ID: uuid.New(), DocumentID: docID, Index: 2, Content: "medium match"},
	}
	embeddings := []rag.Embedding{
		{ChunkID: chunks[0].ID, DocumentID: docID, Vector: []float32{1, 0}},
		{ChunkID: chunks[1].ID, DocumentID: docID, Vector: []float32{0, 1}},
		{ChunkID: chunks[2].ID, DocumentID: docID, Vector: []float32{0.5, 0.5}},
	}

	require.NoError(t, store.Upsert(context.Background(), embeddings, chunks))

	results, err := store.Search(context.Background(), []float32{0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, "high match", results[0].Content)
	require.Equal(t, "medium match", results[1].Content)
	require.Equal(t, "low match", results[2].Content)
	require.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestMemoryVectorStore_SearchRespectsTopK(t *testing.T) {
	store := NewMemoryVectorStore()
	docID := uuid.New()

	for i := 0; i < 5; i++ {
		chunk := rag.Chunk{ID: uuid.New(), DocumentID: docID, Index: i, Content: "chunk"}
		require.NoError(t, store.Upsert(context.Background(), []rag.Embedding{
			{ChunkID: chunk.ID, DocumentID: docID, Vector: []float32{1, 0}},
		}, []rag.Chunk{chunk}))
	}

	results, err := store.Search(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestMemoryVectorStore_SearchBreaksTiesByInsertionOrder(t *testing.T) {
	store := NewMemoryVectorStore()
	docID := uuid.New()

	first := rag.Chunk{ID: uuid.New(), DocumentID: docID, Index: 0, Content: "first"}
	second := rag.Chunk{ID: uuid.New(), DocumentID: docID, Index: 1, Content: "second"}

	require.NoError(t, store.Upsert(context.Background(), []rag.Embedding{
		{ChunkID: first.ID, DocumentID: docID, Vector: []float32{1, 0}},
	}, []rag.Chunk{first}))
	require.NoError(t, store.Upsert(context.Background(), []rag.Embedding{
		{ChunkID: second.ID, DocumentID: docID, Vector: []float32{1, 0}},
	}, []rag.Chunk{second}))

	results, err := store.Search(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "first", results[0].Content)
	require.Equal(t, "second", results[1].Content)
}

func TestMemoryVectorStore_UpsertPreservesInsertionOrderOnUpdate(t *testing.T) {
	store := NewMemoryVectorStore()
	docID := uuid.New()

	first := rag.Chunk{ID: uuid.New(), DocumentID: docID, Index: 0, Content: "first"}
	second := rag.Chunk{ID: uuid.New(), DocumentID: docID, Index: 1, Content: "second"}

	require.NoError(t, store.Upsert(context.Background(), []rag.Embedding{
		{ChunkID: first.ID, DocumentID: docID, Vector: []float32{1, 0}},
	}, []rag.Chunk{first}))
	require.NoError(t, store.Upsert(context.Background(), []rag.Embedding{
		{ChunkID: second.ID, DocumentID: docID, Vector: []float32{1, 0}},
	}, []rag.Chunk{second}))

	updatedFirst := rag.Chunk{ID: first.ID, DocumentID: docID, Index: 0, Content: "first updated"}
	require.NoError(t, store.Upsert(context.Background(), []rag.Embedding{
		{ChunkID: updatedFirst.ID, DocumentID: docID, Vector: []float32{1, 0}},
	}, []rag.Chunk{updatedFirst}))

	results, err := store.Search(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "first updated", results[0].Content)
	require.Equal(t, "second", results[1].Content)
}

func TestMemoryVectorStore_DeleteByDocumentRemovesOnlyItsChunks(t *testing.T) {
	store := NewMemoryVectorStore()
	docA := uuid.New()
	docB := uuid.New()

	chunkA := rag.Chunk{ID: uuid.New(), DocumentID: docA, Content: "a"}
	chunkB := rag.Chunk{ID: uuid.New(), DocumentID: docB, Content: "b"}

	require.NoError(t, store.Upsert(context.Background(), []rag.Embedding{
		{ChunkID: chunkA.ID, DocumentID: docA, Vector: []float32{1, 0}},
		{ChunkID: chunkB.ID, DocumentID: docB, Vector: []float32{0, 1}},
	}, []rag.Chunk{chunkA, chunkB}))

	require.NoError(t, store.DeleteByDocument(context.Background(), docA))

	results, err := store.Search(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "b", results[0].Content)
}

func TestCosineSimilarity_OrthogonalVectorsScoreZero(t *testing.T) {
	require.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
}

func TestCosineSimilarity_MismatchedLengthsScoreZero(t *testing.T) {
	require.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
}
