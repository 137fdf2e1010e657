package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient talks to the messages API
type AnthropicClient struct {
	client anthropic.Client
	model  anthropic.Model
}

func NewAnthropicClient(apiKey, model string, opts ...option.RequestOption) *AnthropicClient {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(model),
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error) {
	system, conversation := splitSystem(in.Messages)
	if len(conversation) == 0 {
		return CompletionResponse{}, NewError(ErrorTypeBadRequest, "message list has no user message")
	}

	messages := make([]anthropic.MessageParam, 0, len(conversation))
	for _, msg := range conversation {
		if msg.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
	}

	maxTokens := int64(in.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	params := anthropic.MessageNewParams{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(in.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system, Type: "text"}}
	}

	if in.Tool != nil {
		properties, required := schemaParts(in.Tool.Parameters)
		schema := anthropic.ToolInputSchemaParam{
			Type:       "object",
			Properties: properties,
			Required:   required,
		}
		params.Tools = []anthropic.ToolUnionParam{anthropic.ToolUnionParamOfTool(schema, in.Tool.Name)}
		// "any" forces a tool call; there is only one tool to choose
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return CompletionResponse{}, classifyStatus(apiErr.StatusCode, err)
		}
		return CompletionResponse{}, classifyTransport(fmt.Errorf("anthropic messages request failed: %w", err))
	}

	if resp == nil || len(resp.Content) == 0 {
		return CompletionResponse{}, NewError(ErrorTypeEmptyResponse, "received empty response from Anthropic")
	}

	var result CompletionResponse
	for i := range resp.Content {
		block := &resp.Content[i]
		switch block.Type {
		case "text":
			result.Content += block.AsText().Text
		case "tool_use":
			toolUse := block.AsToolUse()
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				ID:        toolUse.ID,
				Name:      toolUse.Name,
				Arguments: toolUse.Input,
			})
		}
	}
	return result, nil
}

func (c *AnthropicClient) GetModelName() string {
	return string(c.model)
}
