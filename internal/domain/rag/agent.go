package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	apperrors "github.com/yanqian/ragchat/pkg/errors"
)

// AgentConfig controls ChatAgent prompt assembly and execution bounds.
type AgentConfig struct {
	Preamble         string
	MaxHistoryTokens int
	MaxToolTurns     int
	ExecutionTimeout time.Duration
}

// ChatAgent answers a user message using a system preamble, an
// optional knowledge-base tool, and bounded conversation history.
type ChatAgent struct {
	cfg     AgentConfig
	llm     LlmService
	tool    *KnowledgeBaseTool
	encoder *tiktoken.Tiktoken
	logger  *slog.Logger
}

// NewChatAgent constructs a ChatAgent.
func NewChatAgent(cfg AgentConfig, llm LlmService, tool *KnowledgeBaseTool, logger *slog.Logger) *ChatAgent {
	if cfg.MaxToolTurns <= 0 {
		cfg.MaxToolTurns = 3
	}
	if cfg.ExecutionTimeout <= 0 {
		cfg.ExecutionTimeout = 30 * time.Second
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &ChatAgent{
		cfg:     cfg,
		llm:     llm,
		tool:    tool,
		encoder: enc,
		logger:  logger.With("component", "rag.chat_agent"),
	}
}

// Chat answers message given the prior conversation turns.
func (a *ChatAgent) Chat(ctx context.Context, message string, history []Message) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperrors.Wrap(apperrors.KindValidation, "message cannot be empty", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.ExecutionTimeout)
	defer cancel()

	messages := a.buildMessages(message, history)

	var tools []ToolDefinition
	if a.tool != nil {
		tools = []ToolDefinition{a.tool.Definition()}
	}

	for turn := 0; turn <= a.cfg.MaxToolTurns; turn++ {
		completion, err := a.llm.Chat(ctx, messages, tools)
		if err != nil {
			if ctx.Err() != nil {
				return "", apperrors.Wrap(apperrors.KindTimeout, "chat completion timed out", ctx.Err())
			}
			return "", apperrors.Wrap(apperrors.KindExternalService, "chat completion failed", err)
		}
		if len(completion.ToolCalls) == 0 {
			return strings.TrimSpace(completion.Content), nil
		}
		if a.tool == nil {
			return strings.TrimSpace(completion.Content), nil
		}

		messages = append(messages, LLMMessage{Role: "assistant", Content: completion.Content})
		for _, call := range completion.ToolCalls {
			result, err := a.invokeTool(ctx, call)
			if err != nil {
				result = fmt.Sprintf("tool execution failed: %v", err)
			}
			messages = append(messages, LLMMessage{Role: "tool", Content: result})
		}
	}

	return "", apperrors.Wrap(apperrors.KindInternal, "exceeded maximum tool-call turns", nil)
}

func (a *ChatAgent) invokeTool(ctx context.Context, call ToolCall) (string, error) {
	if call.Name != a.tool.Definition().Name {
		return "", fmt.Errorf("unknown tool %q", call.Name)
	}
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return "", fmt.Errorf("parse tool arguments: %w", err)
	}
	return a.tool.Call(ctx, args.Query)
}

func (a *ChatAgent) buildMessages(message string, history []Message) []LLMMessage {
	messages := make([]LLMMessage, 0, len(history)+2)
	if a.cfg.Preamble != "" {
		messages = append(messages, LLMMessage{Role: "system", Content: a.cfg.Preamble})
	}

	trimmed := a.truncateHistory(history)
	if len(trimmed) > 0 {
		var builder strings.Builder
		builder.WriteString("Previous conversation:\n")
		for _, msg := range trimmed {
			builder.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
		}
		builder.WriteString(fmt.Sprintf("\nCurrent message from user: %s", message))
		messages = append(messages, LLMMessage{Role: "user", Content: builder.String()})
		return messages
	}

	messages = append(messages, LLMMessage{Role: "user", Content: message})
	return messages
}

// truncateHistory keeps the most recent messages that fit within
// MaxHistoryTokens, counted with tiktoken when available. The newest
// message is always kept, even when it alone exceeds the budget.
func (a *ChatAgent) truncateHistory(history []Message) []Message {
	if a.cfg.MaxHistoryTokens <= 0 || len(history) == 0 {
		return history
	}
	kept := make([]Message, 0, len(history))
	total := 0
	for i := len(history) - 1; i >= 0; i-- {
		tokens := a.countTokens(history[i].Content)
		if total+tokens > a.cfg.MaxHistoryTokens && len(kept) > 0 {
			break
		}
		total += tokens
		kept = append(kept, history[i])
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}

func (a *ChatAgent) countTokens(text string) int {
	if text == "" {
		return 0
	}
	if a.encoder != nil {
		return len(a.encoder.Encode(text, nil, nil))
	}
	return len(strings.Fields(text))
}
