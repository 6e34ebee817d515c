package rag

import (
	"context"
	"fmt"
	"strings"
)

// KnowledgeBaseTool exposes RAGService retrieval as an LLM-callable tool.
type KnowledgeBaseTool struct {
	rag            *RAGService
	topK           int
	noResultsReply string
}

// NewKnowledgeBaseTool constructs the tool.
func NewKnowledgeBaseTool(rag *RAGService, topK int, noResultsReply string) *KnowledgeBaseTool {
	if noResultsReply == "" {
		noResultsReply = "No relevant information was found in the knowledge base."
	}
	return &KnowledgeBaseTool{rag: rag, topK: topK, noResultsReply: noResultsReply}
}

// Definition returns the JSON-schema tool definition advertised to the LLM.
func (t *KnowledgeBaseTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "search_knowledge_base",
		Description: "Search the knowledge base for information relevant to a query.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query.",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Call executes a retrieval against the knowledge base and formats the
// result as a numbered list suitable for re-injection into chat context.
func (t *KnowledgeBaseTool) Call(ctx context.Context, query string) (string, error) {
	results, err := t.rag.Retrieve(ctx, query, t.topK)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return t.noResultsReply, nil
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[%d] %s", i+1, r.Content)
	}
	return strings.Join(parts, "\n\n"), nil
}
