package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKnowledgeBaseTool_DefinitionRequiresQuery(t *testing.T) {
	tool := NewKnowledgeBaseTool(nil, 5, "")
	def := tool.Definition()
	require.Equal(t, "search_knowledge_base", def.Name)
	required, ok := def.Parameters["required"].([]string)
	require.True(t, ok)
	require.Equal(t, []string{"query"}, required)
}

func TestKnowledgeBaseTool_CallFormatsNumberedResults(t *testing.T) {
	vectors := &stubVectorStore{results: []SearchResult{{Content: "alpha"}, {Content: "beta"}}}
	embedder := &stubEmbedder{dims: 4}
	ragSvc := NewRAGService(Config{TopK: 5}, vectors, embedder, testLogger())
	tool := NewKnowledgeBaseTool(ragSvc, 5, "no results")

	out, err := tool.Call(context.Background(), "query")
	require.NoError(t, err)
	require.Equal(t, "[1] alpha\n\n[2] beta", out)
}

func TestKnowledgeBaseTool_CallReturnsNoResultsReply(t *testing.T) {
	vectors := &stubVectorStore{}
	embedder := &stubEmbedder{dims: 4}
	ragSvc := NewRAGService(Config{TopK: 5}, vectors, embedder, testLogger())
	tool := NewKnowledgeBaseTool(ragSvc, 5, "nothing found")

	out, err := tool.Call(context.Background(), "query")
	require.NoError(t, err)
	require.Equal(t, "nothing found", out)
}
