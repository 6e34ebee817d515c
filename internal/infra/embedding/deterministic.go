package embedding

import (
	"context"
	"hash/fnv"

	"github.com/yanqian/ragchat/internal/domain/rag"
)

// DeterministicEmbedder derives a fixed-width vector from FNV hashes
// of each input's full text, one hash per dimension salted with the
// dimension index. It has no semantic meaning; it exists
// so the rest of the pipeline (chunking, vector storage, retrieval
// ranking) can be exercised without calling an external embeddings
// API, for local development and tests.
type DeterministicEmbedder struct {
	dims int
}

// NewDeterministicEmbedder constructs a DeterministicEmbedder
// producing vectors of the given width.
func NewDeterministicEmbedder(dims int) *DeterministicEmbedder {
	if dims <= 0 {
		dims = 32
	}
	return &DeterministicEmbedder{dims: dims}
}

// Embed implements rag.EmbeddingService.
func (e *DeterministicEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *DeterministicEmbedder) vector(text string) []float32 {
	vec := make([]float32, e.dims)
	h := fnv.New32a()
	for i := 0; i < e.dims; i++ {
		h.Reset()
		_, _ = h.Write([]byte(text))
		_, _ = h.Write([]byte{byte(i)})
		sum := h.Sum32()
		vec[i] = float32(sum%2000)/1000 - 1
	}
	return vec
}

var _ rag.EmbeddingService = (*DeterministicEmbedder)(nil)
