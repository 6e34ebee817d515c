// Package echo provides a deterministic rag.LlmService used when no
// external LLM credentials are configured, so the rest of the pipeline
// (chunking, retrieval, job dispatch) can still be exercised locally.
package echo

import (
	"context"
	"fmt"
	"strings"

	"github.com/yanqian/ragchat/internal/domain/rag"
)

// LLM answers by echoing back the content of the last user or tool
// message in the transcript, prefixed with "echo: ".
type LLM struct{}

// New constructs an echo LLM.
func New() *LLM {
	return &LLM{}
}

// Chat implements rag.LlmService without ever requesting a tool call:
// it has no means of deciding when a tool would help, so it just
// echoes the conversation back.
func (l *LLM) Chat(_ context.Context, messages []rag.LLMMessage, _ []rag.ToolDefinition) (rag.ChatCompletion, error) {
	var last rag.LLMMessage
	for _, m := range messages {
		if m.Role == "user" || m.Role == "tool" {
			last = m
		}
	}
	if last.Content == "" {
		return rag.ChatCompletion{}, fmt.Errorf("echo: no user message to answer")
	}
	return rag.ChatCompletion{Content: strings.TrimSpace("echo: " + last.Content)}, nil
}

var _ rag.LlmService = (*LLM)(nil)
