package llm

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"unicode"

	"github.com/balkashynov/taskpilot/internal/models"
	"github.com/balkashynov/taskpilot/internal/parser"
)

const localModelName = "local-keyword"

var (
	// Command prefixes that are not part of a task title
	createPrefixRegex = regexp.MustCompile(`(?i)^(?:please\s+)?(?:(?:create|add|make|new|open)\s+(?:a\s+|an\s+)?(?:new\s+)?(?:task|todo|item)s?\s*(?:to|for|:|about)?\s*|remind\s+me\s+to\s+|i\s+(?:need|have|want)\s+to\s+)`)
	titleTrimChars    = " \t\n.,;:!?-"
)

// LocalClient answers without a network call. Plain completions are
// treated as intent classification and answered from the keyword
// vocabulary; forced tool calls return a single task draft built from the
// last user message. It keeps the application usable without an API key.
type LocalClient struct{}

func NewLocalClient() *LocalClient {
	return &LocalClient{}
}

func (LocalClient) Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return CompletionResponse{}, classifyTransport(err)
	}

	message := lastUserMessage(in.Messages)

	if in.Tool == nil {
		switch parser.MatchKeywords(message) {
		case parser.KeywordUpdate:
			return CompletionResponse{Content: "UPDATE"}, nil
		case parser.KeywordDelete:
			return CompletionResponse{Content: "DELETE"}, nil
		default:
			return CompletionResponse{Content: "NONE"}, nil
		}
	}

	drafts := []localDraft{}
	content := ""
	if title := localTitle(message); title != "" {
		draft := localDraft{Title: title, Description: message}
		fields := parser.ParseUpdates(message)
		if fields.Priority != nil {
			draft.Priority = *fields.Priority
		}
		if fields.DueDate != nil {
			draft.DueDate = fields.DueDate.Format("2006-01-02")
		}
		drafts = append(drafts, draft)
		content = "Here is the task I created for you."
	}

	args, err := json.Marshal(map[string]any{"tasks": drafts})
	if err != nil {
		return CompletionResponse{}, &Error{Err: err, Type: ErrorTypeUnknown}
	}
	return CompletionResponse{
		Content: content,
		ToolCalls: []ToolCall{{
			ID:        "local_0",
			Name:      in.Tool.Name,
			Arguments: args,
		}},
	}, nil
}

func (LocalClient) GetModelName() string {
	return localModelName
}

// localDraft mirrors the task entries of the extraction schema
type localDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      models.Status   `json:"status"`
	Priority    models.Priority `json:"priority"`
	DueDate     string          `json:"dueDate,omitempty"`
}

func lastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}

// localTitle drops command words and field clauses and keeps at most
// seven words
func localTitle(message string) string {
	title := parser.StripUpdateClauses(message)
	title = createPrefixRegex.ReplaceAllString(strings.TrimSpace(title), "")
	title = strings.Trim(title, titleTrimChars)

	words := strings.Fields(title)
	if len(words) > 7 {
		words = words[:7]
	}
	title = strings.Trim(strings.Join(words, " "), titleTrimChars)
	if title == "" {
		return ""
	}

	runes := []rune(title)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
