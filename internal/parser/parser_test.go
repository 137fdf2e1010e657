package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/taskpilot/internal/models"
)

func pinNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = prev })
}

func TestParseDueDate(t *testing.T) {
	now := time.Date(2030, time.June, 10, 12, 0, 0, 0, time.Local)
	pinNow(t, now)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"day month year", "15/12/2030", time.Date(2030, time.December, 15, 23, 59, 59, 0, time.Local)},
		{"iso date", "2030-07-01", time.Date(2030, time.July, 1, 23, 59, 59, 0, time.Local)},
		{"today", "today", time.Date(2030, time.June, 10, 23, 59, 59, 0, time.Local)},
		{"tomorrow", "Tomorrow", time.Date(2030, time.June, 11, 23, 59, 59, 0, time.Local)},
		{"days", "3 days", time.Date(2030, time.June, 13, 23, 59, 59, 0, time.Local)},
		{"weeks", "2 weeks", time.Date(2030, time.June, 24, 23, 59, 59, 0, time.Local)},
		{"hours", "5 hours", now.Add(5 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDueDate(tt.input)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseDueDateRejects(t *testing.T) {
	for _, input := range []string{"31/02/2030", "1/1/1999", "next someday", "0 days", "400 days"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDueDate(input)
			assert.Error(t, err)
		})
	}

	got, err := ParseDueDate("   ")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestFormatDueDate(t *testing.T) {
	pinNow(t, time.Date(2030, time.June, 10, 12, 0, 0, 0, time.Local))

	day := func(d int) *time.Time {
		ts := time.Date(2030, time.June, d, 23, 59, 59, 0, time.Local)
		return &ts
	}

	assert.Equal(t, "No date", FormatDueDate(nil))
	assert.Equal(t, "OVERDUE (09/06/2030)", FormatDueDate(day(9)))
	assert.Equal(t, "Due today (10/06/2030)", FormatDueDate(day(10)))
	assert.Equal(t, "Due tomorrow (11/06/2030)", FormatDueDate(day(11)))
	assert.Equal(t, "Due 14/06/2030 (in 4 days)", FormatDueDate(day(14)))
	assert.Equal(t, "Due 30/06/2030", FormatDueDate(day(30)))
}

func TestFindTaskRefs(t *testing.T) {
	assert.Equal(t, []string{"12", "abc-3"}, FindTaskRefs("update task #12 and ID: abc-3"))
	assert.Equal(t, []string{"7"}, FindTaskRefs("Task # 7 is done"))
	assert.Empty(t, FindTaskRefs("no references here, id 5"))

	assert.Equal(t, "delete please", StripTaskRefs("delete task #4 please"))
}

func TestParseUpdates(t *testing.T) {
	pinNow(t, time.Date(2030, time.June, 10, 12, 0, 0, 0, time.Local))

	priority := func(p models.Priority) *models.Priority { return &p }
	status := func(s models.Status) *models.Status { return &s }
	text := func(s string) *string { return &s }

	tests := []struct {
		name    string
		message string
		want    models.TaskFields
	}{
		{
			name:    "priority with filler before the value",
			message: "Change priority of the login bug task to High",
			want:    models.TaskFields{Priority: priority(models.PriorityHigh)},
		},
		{
			name:    "priority adjective",
			message: "make the report task high priority",
			want:    models.TaskFields{Priority: priority(models.PriorityHigh)},
		},
		{
			name:    "status with spaced value",
			message: "set status of task #2 to in progress",
			want:    models.TaskFields{Status: status(models.StatusInProgress)},
		},
		{
			name:    "quoted title and colon priority",
			message: `update task #1: title to "Ship v2" and priority: low`,
			want:    models.TaskFields{Title: text("Ship v2"), Priority: priority(models.PriorityLow)},
		},
		{
			name:    "quoted title does not leak into priority",
			message: `change title to 'High priority review'`,
			want:    models.TaskFields{Title: text("High priority review")},
		},
		{
			name:    "description",
			message: `edit description: "cover the edge cases"`,
			want:    models.TaskFields{Description: text("cover the edge cases")},
		},
		{
			name:    "unknown priority value",
			message: "change priority to urgent",
			want:    models.TaskFields{},
		},
		{
			name:    "nothing to update",
			message: "please update the login task",
			want:    models.TaskFields{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseUpdates(tt.message))
		})
	}
}

func TestParseUpdatesDueDate(t *testing.T) {
	pinNow(t, time.Date(2030, time.June, 10, 12, 0, 0, 0, time.Local))

	fields := ParseUpdates("change the due date to 15/12/2030")
	require.NotNil(t, fields.DueDate)
	assert.Equal(t, 2030, fields.DueDate.Year())
	assert.Equal(t, time.December, fields.DueDate.Month())
	assert.Equal(t, 15, fields.DueDate.Day())

	fields = ParseUpdates("move it, due tomorrow")
	require.NotNil(t, fields.DueDate)
	assert.Equal(t, 11, fields.DueDate.Day())
}

func TestMatchKeywords(t *testing.T) {
	tests := []struct {
		message string
		want    KeywordAction
	}{
		{"please change the deadline", KeywordUpdate},
		{"Fix the typo in task #3", KeywordUpdate},
		{"remove the old task", KeywordDelete},
		{"I removed it, wipe the rest", KeywordDelete},
		{"fix it or delete it", KeywordUpdate},
		{"add a prefix to every name", KeywordNone},
		{"delete the changelog task", KeywordDelete},
		{"open the editor", KeywordNone},
		{"the wording is unclear", KeywordNone},
		{"updating the docs now", KeywordUpdate},
		{"Erased the board, fixes pending", KeywordUpdate},
		{"create a task for the Q3 budget", KeywordNone},
		{"", KeywordNone},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchKeywords(tt.message))
		})
	}
}

func TestTitlePhrase(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"delete the login bug task", "login bug"},
		{"Change priority of the login bug task to High", "login bug"},
		{"Please update the 'Write docs' task, set priority to low", "write docs"},
		{"remove task #3", ""},
		{"Delete Review PR!", "review pr"},
		{"delete the changelog task", "changelog"},
		{"update the editor task status to completed", "editor"},
		{"remove the fixtures cleanup", "fixtures cleanup"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, TitlePhrase(tt.message))
		})
	}
}

func TestContainsPhrase(t *testing.T) {
	tests := []struct {
		title, phrase string
		want          bool
	}{
		{"Fix login bug", "login bug", true},
		{"Fix login bug", "LOGIN", true},
		{"Fix login bug", "log", false},
		{"Fix login bug", "bug fix", false},
		{"Review PR (urgent)", "urgent", true},
		{"Write docs", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.title+"/"+tt.phrase, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsPhrase(tt.title, tt.phrase))
		})
	}
}
