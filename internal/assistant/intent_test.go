package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/taskpilot/internal/llm"
)

func TestKeywordClassifier(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"please update the priority of task #3 to High", IntentUpdate},
		{"delete the login bug task", IntentDelete},
		{"remind me to water the plants", IntentNone},
		{"REMOVE task #2", IntentDelete},
		{"fix the title and then delete the old one", IntentUpdate},
		{"add a prefix step", IntentNone},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, KeywordClassifier{}.Classify(context.Background(), tt.message))
		})
	}
}

func TestModelClassifier(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  Intent
	}{
		{"update", "UPDATE", nil, IntentUpdate},
		{"trimmed and upper-cased", "  delete\n", nil, IntentDelete},
		{"create", "Create", nil, IntentCreate},
		{"unknown reply", "I think you want to update", nil, IntentNone},
		{"transport failure", "", errors.New("connection reset"), IntentNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{resp: llm.CompletionResponse{Content: tt.reply}, err: tt.err}
			classifier := NewModelClassifier(client, zerolog.Nop())

			assert.Equal(t, tt.want, classifier.Classify(context.Background(), "whatever"))
			require.Len(t, client.last.Messages, 2)
			assert.Equal(t, classifyPrompt, client.last.Messages[0].Content)
			assert.Nil(t, client.last.Tool)
		})
	}
}

func TestNewClassifier(t *testing.T) {
	c, err := NewClassifier("keyword", nil, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, KeywordClassifier{}, c)

	c, err = NewClassifier("model", &fakeClient{}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &ModelClassifier{}, c)

	_, err = NewClassifier("dice", nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestParseIntent(t *testing.T) {
	intent, ok := ParseIntent(" none ")
	assert.True(t, ok)
	assert.Equal(t, IntentNone, intent)

	_, ok = ParseIntent("archive")
	assert.False(t, ok)
	assert.Equal(t, "delete", IntentDelete.String())
}
