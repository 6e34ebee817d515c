package chatgpt

import (
	"context"
	"fmt"

	"github.com/yanqian/ragchat/internal/domain/rag"
)

// LLM adapts a Client into a rag.LlmService, translating between the
// domain's message/tool types and the wire types the ChatGPT API
// expects.
type LLM struct {
	client      *Client
	model       string
	temperature float32
}

// NewLLM constructs an LLM adapter bound to model.
func NewLLM(client *Client, model string, temperature float32) *LLM {
	return &LLM{client: client, model: model, temperature: temperature}
}

// Chat implements rag.LlmService.
func (l *LLM) Chat(ctx context.Context, messages []rag.LLMMessage, tools []rag.ToolDefinition) (rag.ChatCompletion, error) {
	req := ChatCompletionRequest{
		Model:       l.model,
		Temperature: l.temperature,
		Messages:    toWireMessages(messages),
		Tools:       toWireTools(tools),
	}

	resp, err := l.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return rag.ChatCompletion{}, fmt.Errorf("chatgpt adapter: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return rag.ChatCompletion{}, fmt.Errorf("chatgpt adapter: empty choices")
	}

	msg := resp.Choices[0].Message
	return rag.ChatCompletion{
		Content:   msg.Content,
		ToolCalls: fromWireToolCalls(msg.ToolCalls),
	}, nil
}

func toWireMessages(messages []rag.LLMMessage) []Message {
	out := make([]Message, len(messages))
	for i, m := range messages {
		out[i] = Message{Role: m.Role, Content: m.Content}
	}
	return out
}

func toWireTools(tools []rag.ToolDefinition) []Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]Tool, len(tools))
	for i, t := range tools {
		out[i] = Tool{
			Type: "function",
			Function: ToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return out
}

func fromWireToolCalls(calls []ToolCall) []rag.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]rag.ToolCall, len(calls))
	for i, c := range calls {
		out[i] = rag.ToolCall{
			ID:        c.ID,
			Name:      c.Function.Name,
			Arguments: c.Function.Arguments,
		}
	}
	return out
}

var _ rag.LlmService = (*LLM)(nil)
