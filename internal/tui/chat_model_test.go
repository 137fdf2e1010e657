package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/taskpilot/internal/assistant"
	"github.com/balkashynov/taskpilot/internal/config"
	"github.com/balkashynov/taskpilot/internal/db"
	"github.com/balkashynov/taskpilot/internal/llm"
	"github.com/balkashynov/taskpilot/internal/models"
)

func newChat(t *testing.T, seed ...models.Task) (ChatModel, *assistant.Session, *db.TaskStore) {
	t.Helper()
	gormDB, err := db.Open(config.DBConfig{DSN: "file::memory:", LogLevel: "silent"}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gormDB) })
	store := db.NewTaskStore(gormDB)

	now := time.Now()
	for i := range seed {
		seed[i].CreatedAt = now
		seed[i].UpdatedAt = now
	}
	require.NoError(t, store.Seed(context.Background(), seed))

	extractor := assistant.NewDraftExtractor(llm.NewLocalClient(), 512, 0.7)
	session := assistant.NewSession("tui", store, assistant.KeywordClassifier{}, extractor)

	m := NewChatModel(context.Background(), session, store)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = update(t, m, m.loadTasks())
	return m, session, store
}

func update(t *testing.T, m ChatModel, msg tea.Msg) ChatModel {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(ChatModel)
	require.True(t, ok)
	return model
}

func typeText(t *testing.T, m ChatModel, text string) ChatModel {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// pressEnter submits the input and returns the model while loading plus
// the messages produced by the background work
func pressEnter(t *testing.T, m ChatModel) (ChatModel, []turnDoneMsg) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(ChatModel), collect(cmd)
}

func collect(cmd tea.Cmd) []turnDoneMsg {
	if cmd == nil {
		return nil
	}
	var done []turnDoneMsg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			done = append(done, collect(c)...)
		}
	case turnDoneMsg:
		done = append(done, msg)
	}
	return done
}

func TestChatCreatesTask(t *testing.T) {
	m, session, _ := newChat(t)
	message := "add a task to review the Q3 budget by Friday, high priority"

	m = typeText(t, m, message)
	assert.Equal(t, message, session.InputValue())

	m, done := pressEnter(t, m)
	assert.True(t, m.loading)
	assert.Empty(t, m.input.Value())

	// Typing is ignored until the turn finishes
	m = typeText(t, m, "more")
	assert.Empty(t, m.input.Value())

	require.Len(t, done, 1)
	require.NoError(t, done[0].err)
	require.NotNil(t, done[0].result)
	assert.Equal(t, assistant.KindCreated, done[0].result.Kind)

	m = update(t, m, done[0])
	assert.False(t, m.loading)
	require.Len(t, m.taskList, 1)
	assert.Equal(t, models.PriorityHigh, m.taskList[0].Priority)
	assert.Len(t, session.Messages(), 2)
	assert.Contains(t, m.View(), "Copilot")
}

func TestChatIgnoresBlankInput(t *testing.T) {
	m, session, _ := newChat(t)

	m = typeText(t, m, "   ")
	m, done := pressEnter(t, m)

	assert.False(t, m.loading)
	assert.Empty(t, done)
	assert.Empty(t, session.Messages())
}

func TestChatDeleteAndUndo(t *testing.T) {
	m, session, store := newChat(t, models.Task{
		ID:       "7",
		Title:    "Write release notes",
		Status:   models.StatusPending,
		Priority: models.PriorityLow,
	})
	require.Len(t, m.taskList, 1)

	m = typeText(t, m, "delete task #7")
	m, done := pressEnter(t, m)
	require.Len(t, done, 1)
	m = update(t, m, done[0])
	assert.Equal(t, assistant.KindDeleted, done[0].result.Kind)
	assert.Empty(t, m.taskList)
	assert.True(t, session.CanUndo())
	assert.Contains(t, m.renderHelpBar(), undoCommand)

	m = typeText(t, m, "/undo")
	m, done = pressEnter(t, m)
	require.Len(t, done, 1)
	require.NoError(t, done[0].err)
	m = update(t, m, done[0])
	require.Len(t, m.taskList, 1)
	assert.Equal(t, "7", m.taskList[0].ID)

	restored, err := store.Find(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Write release notes", restored.Title)

	m = typeText(t, m, "/undo")
	m, done = pressEnter(t, m)
	require.Len(t, done, 1)
	m = update(t, m, done[0])
	assert.Equal(t, "Nothing to undo.", m.notice)
	assert.Contains(t, m.View(), "Nothing to undo.")
}

func TestChatTogglesPanel(t *testing.T) {
	m, _, _ := newChat(t, models.Task{
		ID:       "1",
		Title:    "Plan offsite",
		Status:   models.StatusInProgress,
		Priority: models.PriorityMedium,
	})

	assert.Equal(t, ViewBoard, m.view)
	assert.Contains(t, m.View(), "In Progress (1)")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewList, m.view)
	assert.Contains(t, m.View(), "TITLE")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewBoard, m.view)
}

func TestChatQuits(t *testing.T) {
	m, _, _ := newChat(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}

func TestRenderTranscript(t *testing.T) {
	assert.Contains(t, renderTranscript(nil, 60), "Ask me")

	out := renderTranscript([]models.ChatMessage{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "Created 1 task(s).", Tasks: []models.Task{
			{Title: "Review Q3 budget", Status: models.StatusPending, Priority: models.PriorityHigh},
		}},
	}, 60)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "Review Q3 budget")
	assert.Contains(t, out, "No date")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a longer title", 8, "a lon..."},
		{"abcdef", 2, "ab"},
		{"ünïcödé title", 6, "ünï..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.width), tt.in)
	}
	assert.True(t, strings.HasSuffix(truncate(strings.Repeat("x", 50), 20), "..."))
}

func TestShimmerRender(t *testing.T) {
	s := NewShimmer(ShimmerConfig{Enabled: true, ReduceMotion: true})
	assert.Contains(t, s.Render("Thinking..."), "Thinking...")
	assert.Empty(t, s.Render(""))

	s = NewShimmer(DefaultShimmerConfig())
	start := time.Now()
	s.now = func() time.Time { return start }
	s.Start()

	center, ok := s.center(10)
	require.True(t, ok)
	assert.InDelta(t, -2.5, center, 0.001)

	s.now = func() time.Time { return start.Add(1900 * time.Millisecond) }
	_, ok = s.center(10)
	assert.False(t, ok, "paused between cycles")
}
