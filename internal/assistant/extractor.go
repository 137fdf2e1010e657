package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/balkashynov/taskpilot/internal/llm"
	"github.com/balkashynov/taskpilot/internal/models"
	"github.com/balkashynov/taskpilot/internal/parser"
)

const (
	extractToolName = "extractTasks"

	clarifyQuestion = "I couldn't find a task in that message. What would you like me to add?"
)

// ErrMalformedExtraction means the model called the tool with arguments
// that are not valid JSON
var ErrMalformedExtraction = errors.New("malformed task extraction")

// extractSchema is the JSON schema of the extractTasks arguments
var extractSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"tasks": map[string]any{
			"type":        "array",
			"description": "Tasks found in the user message",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":       map[string]any{"type": "string", "description": "Short task title, at most 7 words"},
					"description": map[string]any{"type": "string", "description": "Task description, at most 20 words"},
					"status":      map[string]any{"type": "string", "enum": []string{string(models.StatusPending), string(models.StatusInProgress)}},
					"priority":    map[string]any{"type": "string", "enum": []string{string(models.PriorityLow), string(models.PriorityMedium), string(models.PriorityHigh)}},
					"dueDate":     map[string]any{"type": "string", "description": "Optional due date in ISO 8601 format"},
				},
				"required": []string{"title", "description", "status", "priority"},
			},
		},
	},
	"required": []string{"tasks"},
}

// Extraction is the result of a creation request
type Extraction struct {
	Text   string
	Drafts []models.Draft
}

// Extractor turns a free-text creation request into task drafts
type Extractor interface {
	Extract(ctx context.Context, message string) (Extraction, error)
}

// DraftExtractor asks the language model to call extractTasks
type DraftExtractor struct {
	client      llm.Client
	maxTokens   int
	temperature float64
	now         func() time.Time
}

func NewDraftExtractor(client llm.Client, maxTokens int, temperature float64) *DraftExtractor {
	return &DraftExtractor{
		client:      client,
		maxTokens:   maxTokens,
		temperature: temperature,
		now:         time.Now,
	}
}

func (e *DraftExtractor) systemPrompt() string {
	return strings.Join([]string{
		"You are a helpful task management copilot. Help users create and manage their tasks.",
		"Extract every task in the user's message by calling " + extractToolName + ". Rules:",
		"- Titles have at most 7 words.",
		"- Descriptions have at most 20 words.",
		"- Status is PENDING or IN_PROGRESS.",
		"- Priority is LOW, MEDIUM or HIGH, inferred from the message.",
		"- dueDate is optional and uses ISO 8601 (YYYY-MM-DD). Today is " + e.now().Format("Monday 2006-01-02") + ".",
		"If the message contains no task, return an empty list and ask the user what they want to add.",
	}, "\n")
}

func (e *DraftExtractor) Extract(ctx context.Context, message string) (Extraction, error) {
	resp, err := e.client.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage(e.systemPrompt()),
			llm.NewUserMessage(message),
		},
		Tool: &llm.Tool{
			Name:        extractToolName,
			Description: "Extract or generate tasks from user message",
			Parameters:  extractSchema,
		},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to extract tasks: %w", err)
	}

	extraction := Extraction{Text: strings.TrimSpace(resp.Content)}
	for _, call := range resp.ToolCalls {
		if call.Name != extractToolName {
			continue
		}
		drafts, err := decodeDrafts(call.Arguments)
		if err != nil {
			return Extraction{}, err
		}
		extraction.Drafts = append(extraction.Drafts, drafts...)
	}

	if len(extraction.Drafts) == 0 && extraction.Text == "" {
		extraction.Text = clarifyQuestion
	}
	return extraction, nil
}

// rawDraft keeps enum fields as strings so one bad value does not reject
// the whole call
type rawDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

// decodeDrafts validates tool arguments. Drafts without a title are
// dropped; unknown status/priority fall back to defaults and unparsable
// due dates are dropped.
func decodeDrafts(arguments json.RawMessage) ([]models.Draft, error) {
	var args struct {
		Tasks []rawDraft `json:"tasks"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}

	drafts := make([]models.Draft, 0, len(args.Tasks))
	for _, raw := range args.Tasks {
		draft := models.Draft{
			Title:       raw.Title,
			Description: strings.TrimSpace(raw.Description),
		}
		// New tasks start pending or in progress
		if status, ok := models.ParseStatus(raw.Status); ok && (status == models.StatusPending || status == models.StatusInProgress) {
			draft.Status = status
		}
		if priority, ok := models.ParsePriority(raw.Priority); ok {
			draft.Priority = priority
		}
		if dueDate, err := parser.ParseDueDate(raw.DueDate); err == nil {
			draft.DueDate = dueDate
		}

		draft = draft.WithDefaults()
		if draft.Title == "" {
			continue
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}
