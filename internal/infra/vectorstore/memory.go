package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/ragchat/internal/domain/rag"
)

type memoryRecord struct {
	chunk  rag.Chunk
	vector []float32
	order  int
}

// MemoryVectorStore is an in-process rag.VectorStore. A single
// RWMutex guards all state: Search takes the read lock, Upsert and
// DeleteByDocument take the write lock.
type MemoryVectorStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*memoryRecord
	seq     int
}

// NewMemoryVectorStore constructs a MemoryVectorStore.
func NewMemoryVectorStore() *MemoryVectorStore {
	return &MemoryVectorStore{records: make(map[uuid.UUID]*memoryRecord)}
}

// Upsert implements rag.VectorStore.
func (s *MemoryVectorStore) Upsert(_ context.Context, embeddings []rag.Embedding, chunks []rag.Chunk) error {
	byChunk := make(map[uuid.UUID]rag.Chunk, len(chunks))
	for _, c := range chunks {
		byChunk[c.ID] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range embeddings {
		chunk, ok := byChunk[e.ChunkID]
		if !ok {
			continue
		}
		existing, had := s.records[e.ChunkID]
		order := s.seq
		if had {
			order = existing.order
		} else {
			s.seq++
		}
		s.records[e.ChunkID] = &memoryRecord{chunk: chunk, vector: e.Vector, order: order}
	}
	return nil
}

// Search implements rag.VectorStore with cosine similarity, a stable
// sort by score descending, and ties broken by insertion order.
func (s *MemoryVectorStore) Search(_ context.Context, query []float32, topK int) ([]rag.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]rag.SearchResult, 0, len(s.records))
	orders := make(map[uuid.UUID]int, len(s.records))
	for id, rec := range s.records {
		score := cosineSimilarity(query, rec.vector)
		results = append(results, rag.SearchResult{
			ChunkID:    rec.chunk.ID,
			DocumentID: rec.chunk.DocumentID,
			Content:    rec.chunk.Content,
			Source:     "memory",
			Score:      score,
		})
		orders[id] = rec.order
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return orders[results[i].ChunkID] < orders[results[j].ChunkID]
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteByDocument implements rag.VectorStore.
func (s *MemoryVectorStore) DeleteByDocument(_ context.Context, documentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.records {
		if rec.chunk.DocumentID == documentID {
			delete(s.records, id)
		}
	}
	return nil
}

var _ rag.VectorStore = (*MemoryVectorStore)(nil)

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i] * b[i])
		magA += float64(a[i] * a[i])
		magB += float64(b[i] * b[i])
	}
	den := math.Sqrt(magA) * math.Sqrt(magB)
	if den == 0 {
		return 0
	}
	return dot / den
}
