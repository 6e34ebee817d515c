package embedding

import (
	"context"
	"fmt"

	"github.com/yanqian/ragchat/internal/domain/rag"
	"github.com/yanqian/ragchat/internal/infra/llm/chatgpt"
)

// batchSize bounds how many inputs are sent to the embeddings endpoint
// in a single request.
const batchSize = 100

// OpenAIEmbedder is a rag.EmbeddingService backed by an OpenAI
// compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client *chatgpt.Client
	model  string
}

// NewOpenAIEmbedder constructs an OpenAIEmbedder using model for every
// request.
func NewOpenAIEmbedder(client *chatgpt.Client, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: client, model: model}
}

// Embed implements rag.EmbeddingService, batching requests so no
// single call exceeds batchSize inputs.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		resp, err := e.client.CreateEmbedding(ctx, chatgpt.EmbeddingRequest{
			Model: e.model,
			Input: texts[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("embedding: batch [%d:%d]: %w", start, end, err)
		}
		for _, d := range resp.Data {
			out[start+d.Index] = d.Embedding
		}
	}
	return out, nil
}

var _ rag.EmbeddingService = (*OpenAIEmbedder)(nil)
