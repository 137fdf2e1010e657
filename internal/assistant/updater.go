package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/balkashynov/taskpilot/internal/config"
	"github.com/balkashynov/taskpilot/internal/llm"
	"github.com/balkashynov/taskpilot/internal/models"
	"github.com/balkashynov/taskpilot/internal/parser"
)

const analyzeUpdateToolName = "analyzeUpdate"

// analyzeUpdateSchema is the JSON schema of the analyzeUpdate arguments
var analyzeUpdateSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"taskId": map[string]any{"type": "string", "description": "ID of the task to update, empty when no task matches"},
		"updates": map[string]any{
			"type":        "object",
			"description": "Only the fields the user asked to change",
			"properties": map[string]any{
				"title":       map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"status":      map[string]any{"type": "string", "enum": statusKeys()},
				"priority":    map[string]any{"type": "string", "enum": []string{string(models.PriorityLow), string(models.PriorityMedium), string(models.PriorityHigh)}},
				"dueDate":     map[string]any{"type": "string", "description": "Due date in ISO 8601 format"},
			},
		},
	},
	"required": []string{"taskId", "updates"},
}

func statusKeys() []string {
	statuses := models.Statuses()
	keys := make([]string, 0, len(statuses))
	for _, s := range statuses {
		keys = append(keys, string(s))
	}
	return keys
}

// Updater picks the task an update message is about and the changes it
// asks for. ok is false when no task matches; empty fields mean the
// message named a task but no valid change.
type Updater interface {
	ResolveUpdate(ctx context.Context, message string, tasks []models.Task) (task models.Task, fields models.TaskFields, ok bool)
}

// KeywordUpdater resolves the task locally and parses field clauses
type KeywordUpdater struct{}

func (KeywordUpdater) ResolveUpdate(_ context.Context, message string, tasks []models.Task) (models.Task, models.TaskFields, bool) {
	task, ok := Resolve(message, tasks)
	if !ok {
		return models.Task{}, models.TaskFields{}, false
	}
	return task, parser.ParseUpdates(message), true
}

// ModelUpdater shows the language model the task list and asks it to call
// analyzeUpdate with the target ID and the requested changes. Any failure
// is reported as no match.
type ModelUpdater struct {
	client    llm.Client
	maxTokens int
	log       zerolog.Logger
	now       func() time.Time
}

func NewModelUpdater(client llm.Client, maxTokens int, log zerolog.Logger) *ModelUpdater {
	return &ModelUpdater{
		client:    client,
		maxTokens: maxTokens,
		log:       log.With().Str("component", "updater").Logger(),
		now:       time.Now,
	}
}

func (u *ModelUpdater) systemPrompt(tasks []models.Task) string {
	lines := []string{
		"You analyze requests to update existing tasks. The current tasks are:",
	}
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("ID: %s, Title: %s, Status: %s, Priority: %s", t.ID, t.Title, t.Status, t.Priority))
	}
	lines = append(lines,
		"Call "+analyzeUpdateToolName+" with the ID of the task the user means and only the fields they want changed.",
		"Use an empty taskId when no task matches. Today is "+u.now().Format("Monday 2006-01-02")+".",
	)
	return strings.Join(lines, "\n")
}

func (u *ModelUpdater) ResolveUpdate(ctx context.Context, message string, tasks []models.Task) (models.Task, models.TaskFields, bool) {
	if len(tasks) == 0 {
		return models.Task{}, models.TaskFields{}, false
	}

	resp, err := u.client.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage(u.systemPrompt(tasks)),
			llm.NewUserMessage(message),
		},
		Tool: &llm.Tool{
			Name:        analyzeUpdateToolName,
			Description: "Identify the task to update and the requested changes",
			Parameters:  analyzeUpdateSchema,
		},
		MaxTokens:   u.maxTokens,
		Temperature: 0,
	})
	if err != nil {
		u.log.Warn().Err(err).Msg("update analysis failed, reporting no match")
		return models.Task{}, models.TaskFields{}, false
	}

	for _, call := range resp.ToolCalls {
		if call.Name != analyzeUpdateToolName {
			continue
		}
		id, fields, err := decodeUpdate(call.Arguments)
		if err != nil {
			u.log.Warn().Err(err).Msg("malformed update analysis, reporting no match")
			return models.Task{}, models.TaskFields{}, false
		}
		for _, task := range tasks {
			if task.ID == id {
				return task, fields, true
			}
		}
		u.log.Debug().Str("task_id", id).Msg("update analysis named no known task")
		return models.Task{}, models.TaskFields{}, false
	}
	return models.Task{}, models.TaskFields{}, false
}

// decodeUpdate validates analyzeUpdate arguments. Blank titles, unknown
// enum values and unparsable due dates are dropped.
func decodeUpdate(arguments json.RawMessage) (string, models.TaskFields, error) {
	var args struct {
		TaskID  string `json:"taskId"`
		Updates struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
			Status      string  `json:"status"`
			Priority    string  `json:"priority"`
			DueDate     string  `json:"dueDate"`
		} `json:"updates"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil {
		return "", models.TaskFields{}, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}

	var fields models.TaskFields
	if args.Updates.Title != nil {
		if title := strings.TrimSpace(*args.Updates.Title); title != "" {
			fields.Title = &title
		}
	}
	if args.Updates.Description != nil {
		description := strings.TrimSpace(*args.Updates.Description)
		fields.Description = &description
	}
	if status, ok := models.ParseStatus(args.Updates.Status); ok {
		fields.Status = &status
	}
	if priority, ok := models.ParsePriority(args.Updates.Priority); ok {
		fields.Priority = &priority
	}
	if due, err := parser.ParseDueDate(args.Updates.DueDate); err == nil && due != nil {
		fields.DueDate = due
	}
	return strings.TrimSpace(args.TaskID), fields, nil
}

// NewUpdater returns the updater for the configured strategy
func NewUpdater(strategy string, client llm.Client, maxTokens int, log zerolog.Logger) (Updater, error) {
	switch strategy {
	case config.UpdaterKeyword:
		return KeywordUpdater{}, nil
	case config.UpdaterModel:
		return NewModelUpdater(client, maxTokens, log), nil
	default:
		return nil, fmt.Errorf("unknown updater: %s", strategy)
	}
}
