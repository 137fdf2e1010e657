package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient talks to the chat completions API
type OpenAIClient struct {
	client openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string, opts ...option.RequestOption) *OpenAIClient {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (o *OpenAIClient) Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(in.Messages))
	for _, msg := range in.Messages {
		switch msg.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    messages,
		Temperature: openai.Float(in.Temperature),
	}
	if in.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(in.MaxTokens))
	}

	if in.Tool != nil {
		params.Tools = []openai.ChatCompletionToolParam{{
			Function: openai.FunctionDefinitionParam{
				Name:        in.Tool.Name,
				Description: openai.String(in.Tool.Description),
				Parameters:  openai.FunctionParameters(in.Tool.Parameters),
			},
		}}
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: in.Tool.Name},
			},
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return CompletionResponse{}, classifyStatus(apiErr.StatusCode, err)
		}
		return CompletionResponse{}, classifyTransport(fmt.Errorf("openai chat completion failed: %w", err))
	}

	if resp == nil || len(resp.Choices) == 0 {
		return CompletionResponse{}, NewError(ErrorTypeEmptyResponse, "received no choices from OpenAI")
	}

	message := resp.Choices[0].Message
	result := CompletionResponse{Content: message.Content}
	for _, call := range message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: []byte(call.Function.Arguments),
		})
	}
	return result, nil
}

func (o *OpenAIClient) GetModelName() string {
	return o.model
}
