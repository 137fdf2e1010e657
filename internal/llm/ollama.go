package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

const defaultOllamaHost = "http://localhost:11434"

// OllamaClient talks to a local Ollama server. Forced tools are sent as a
// JSON-schema response format; the reply is returned as the tool call.
type OllamaClient struct {
	client *api.Client
	model  string
}

func NewOllamaClient(hostURL, model string, httpClient *http.Client) *OllamaClient {
	if hostURL == "" {
		hostURL = defaultOllamaHost
	}
	parsedURL, err := url.Parse(hostURL)
	if err != nil {
		parsedURL, _ = url.Parse(defaultOllamaHost)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &OllamaClient{
		client: api.NewClient(parsedURL, httpClient),
		model:  model,
	}
}

func (o *OllamaClient) Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error) {
	messages := make([]api.Message, 0, len(in.Messages))
	for _, msg := range in.Messages {
		messages = append(messages, api.Message{Role: string(msg.Role), Content: msg.Content})
	}

	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": in.Temperature,
			"num_predict": in.MaxTokens,
		},
	}

	if in.Tool != nil {
		schema, err := json.Marshal(in.Tool.Parameters)
		if err != nil {
			return CompletionResponse{}, &Error{Err: err, Type: ErrorTypeBadRequest, Message: "invalid tool schema"}
		}
		req.Format = schema
	}

	var response api.ChatResponse
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return CompletionResponse{}, classifyOllama(err)
	}

	content := strings.TrimSpace(response.Message.Content)
	if content == "" {
		return CompletionResponse{}, NewError(ErrorTypeEmptyResponse, "received empty response from Ollama")
	}

	if in.Tool == nil {
		return CompletionResponse{Content: content}, nil
	}
	return CompletionResponse{
		ToolCalls: []ToolCall{{
			ID:        "call_0",
			Name:      in.Tool.Name,
			Arguments: json.RawMessage(content),
		}},
	}, nil
}

func (o *OllamaClient) GetModelName() string {
	return o.model
}

func classifyOllama(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr.StatusCode, err)
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		return &Error{Err: err, Type: ErrorTypeTransient, Message: fmt.Sprintf("Ollama server not reachable: %v", err)}
	case strings.Contains(errStr, "model") && strings.Contains(errStr, "not found"):
		return &Error{Err: err, Type: ErrorTypeBadRequest, Message: fmt.Sprintf("Ollama model not found: %v", err)}
	default:
		return classifyTransport(err)
	}
}
