package rag

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	responses []ChatCompletion
	calls     int
}

func (l *scriptedLLM) Chat(_ context.Context, _ []LLMMessage, _ []ToolDefinition) (ChatCompletion, error) {
	resp := l.responses[l.calls]
	l.calls++
	return resp, nil
}

func TestChatAgent_ReturnsDirectAnswerWithoutTool(t *testing.T) {
	llm := &scriptedLLM{responses: []ChatCompletion{{Content: "hello there"}}}
	agent := NewChatAgent(AgentConfig{Preamble: "be helpful", ExecutionTimeout: time.Second}, llm, nil, testLogger())

	answer, err := agent.Chat(context.Background(), "hi", nil)
	require.NoError(t, err)
	require.Equal(t, "hello there", answer)
	require.Equal(t, 1, llm.calls)
}

func TestChatAgent_RejectsEmptyMessage(t *testing.T) {
	llm := &scriptedLLM{}
	agent := NewChatAgent(AgentConfig{ExecutionTimeout: time.Second}, llm, nil, testLogger())

	_, err := agent.Chat(context.Background(), "   ", nil)
	require.Error(t, err)
}

func TestChatAgent_InvokesToolThenReturnsFollowUpAnswer(t *testing.T) {
	vectors := &stubVectorStore{results: []SearchResult{{Content: "fact one"}}}
	embedder := &stubEmbedder{dims: 4}
	ragSvc := NewRAGService(Config{TopK: 5}, vectors, embedder, testLogger())
	tool := NewKnowledgeBaseTool(ragSvc, 5, "no results")

	llm := &scriptedLLM{responses: []ChatCompletion{
		{ToolCalls: []ToolCall{{ID: "call-1", Name: "search_knowledge_base", Arguments: `{"query":"fact"}`}}},
		{Content: "the fact is fact one"},
	}}
	agent := NewChatAgent(AgentConfig{ExecutionTimeout: time.Second, MaxToolTurns: 2}, llm, tool, testLogger())

	answer, err := agent.Chat(context.Background(), "what is the fact?", nil)
	require.NoError(t, err)
	require.Equal(t, "the fact is fact one", answer)
	require.Equal(t, 2, llm.calls)
}

func TestChatAgent_GivesUpAfterMaxToolTurns(t *testing.T) {
	vectors := &stubVectorStore{results: []SearchResult{{Content: "fact"}}}
	embedder := &stubEmbedder{dims: 4}
	ragSvc := NewRAGService(Config{TopK: 5}, vectors, embedder, testLogger())
	tool := NewKnowledgeBaseTool(ragSvc, 5, "no results")

	call := ChatCompletion{ToolCalls: []ToolCall{{ID: "call-1", Name: "search_knowledge_base", Arguments: `{"query":"fact"}`}}}
	llm := &scriptedLLM{responses: []ChatCompletion{call, call, call}}
	agent := NewChatAgent(AgentConfig{ExecutionTimeout: time.Second, MaxToolTurns: 2}, llm, tool, testLogger())

	_, err := agent.Chat(context.Background(), "what is the fact?", nil)
	require.Error(t, err)
}

func TestChatAgent_TruncatesHistoryToMostRecentMessages(t *testing.T) {
	llm := &scriptedLLM{responses: []ChatCompletion{{Content: "ack"}}}
	agent := NewChatAgent(AgentConfig{ExecutionTimeout: time.Second, MaxHistoryTokens: 1}, llm, nil, testLogger())

	history := []Message{
		{Role: RoleUser, Content: "first message with several words"},
		{Role: RoleAssistant, Content: "second message reply"},
	}
	trimmed := agent.truncateHistory(history)
	require.Len(t, trimmed, 1)
	require.Equal(t, "second message reply", trimmed[0].Content)
}
