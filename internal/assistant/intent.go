package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/balkashynov/taskpilot/internal/config"
	"github.com/balkashynov/taskpilot/internal/llm"
	"github.com/balkashynov/taskpilot/internal/parser"
)

// Intent is the classified purpose of a chat message
type Intent int

const (
	IntentNone Intent = iota
	IntentCreate
	IntentUpdate
	IntentDelete
)

func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "none"
	case IntentCreate:
		return "create"
	case IntentUpdate:
		return "update"
	case IntentDelete:
		return "delete"
	default:
		return fmt.Sprintf("intent(%d)", int(i))
	}
}

func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// ParseIntent maps a model reply such as "UPDATE" to an Intent
func ParseIntent(reply string) (Intent, bool) {
	switch strings.ToUpper(strings.TrimSpace(reply)) {
	case "NONE":
		return IntentNone, true
	case "CREATE":
		return IntentCreate, true
	case "UPDATE":
		return IntentUpdate, true
	case "DELETE":
		return IntentDelete, true
	default:
		return IntentNone, false
	}
}

// Classifier decides what a chat message asks for. It never fails: no
// signal, or a failure to get one, is IntentNone.
type Classifier interface {
	Classify(ctx context.Context, message string) Intent
}

// KeywordClassifier matches the update and delete vocabularies locally
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(_ context.Context, message string) Intent {
	switch parser.MatchKeywords(message) {
	case parser.KeywordUpdate:
		return IntentUpdate
	case parser.KeywordDelete:
		return IntentDelete
	case parser.KeywordNone:
		return IntentNone
	default:
		return IntentNone
	}
}

const classifyPrompt = "Classify the user message into one of these actions: NONE, CREATE, UPDATE, DELETE. Respond with just the action word."

// ModelClassifier asks the language model for a one-word action
type ModelClassifier struct {
	client llm.Client
	log    zerolog.Logger
}

func NewModelClassifier(client llm.Client, log zerolog.Logger) *ModelClassifier {
	return &ModelClassifier{
		client: client,
		log:    log.With().Str("component", "classifier").Logger(),
	}
}

func (c *ModelClassifier) Classify(ctx context.Context, message string) Intent {
	resp, err := c.client.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.NewSystemMessage(classifyPrompt),
			llm.NewUserMessage(message),
		},
		MaxTokens:   10,
		Temperature: 0,
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("intent classification failed, treating message as a new task")
		return IntentNone
	}

	intent, ok := ParseIntent(resp.Content)
	if !ok {
		c.log.Warn().Str("reply", resp.Content).Msg("unrecognized intent reply, treating message as a new task")
		return IntentNone
	}
	return intent
}

// NewClassifier returns the classifier for the configured strategy
func NewClassifier(strategy string, client llm.Client, log zerolog.Logger) (Classifier, error) {
	switch strategy {
	case config.ClassifierKeyword:
		return KeywordClassifier{}, nil
	case config.ClassifierModel:
		return NewModelClassifier(client, log), nil
	default:
		return nil, fmt.Errorf("unknown classifier: %s", strategy)
	}
}
