// Package llm provides the completion interface the assistant talks to and
// its provider implementations.
package llm

import (
	"context"
	"encoding/json"
)

// Role is the author of a completion message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a completion request
type Message struct {
	Role    Role
	Content string
}

// Tool describes a function the model is forced to call.
// Parameters is a JSON schema of type "object".
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a function call returned by the model. Arguments is passed
// through as raw JSON and may be malformed; callers validate it.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

type CompletionRequest struct {
	Messages    []Message
	Tool        *Tool // nil for plain text completions
	MaxTokens   int
	Temperature float64
}

type CompletionResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// Client is a language model that completes a conversation
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	GetModelName() string
}

func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// splitSystem returns the joined system messages and the remaining conversation
func splitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content
			continue
		}
		rest = append(rest, msg)
	}
	return system, rest
}

// schemaParts splits an object schema into its properties and required list
func schemaParts(schema map[string]any) (any, []string) {
	var required []string
	switch r := schema["required"].(type) {
	case []string:
		required = r
	case []any:
		for _, v := range r {
			if s, ok := v.(string); ok {
				required = append(required, s)
			}
		}
	}
	return schema["properties"], required
}
