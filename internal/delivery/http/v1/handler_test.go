package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/taskpilot/internal/assistant"
	"github.com/balkashynov/taskpilot/internal/config"
	"github.com/balkashynov/taskpilot/internal/db"
	"github.com/balkashynov/taskpilot/internal/llm"
	"github.com/balkashynov/taskpilot/internal/metrics"
	"github.com/balkashynov/taskpilot/internal/models"
)

type testServer struct {
	router *gin.Engine
	store  *db.TaskStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gormDB, err := db.Open(config.DBConfig{DSN: "file::memory:", LogLevel: "silent"}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gormDB) })
	recorder := metrics.NewPrometheusRecorder()
	store := db.NewTaskStore(gormDB, db.WithRecorder(recorder))

	extractor := assistant.NewDraftExtractor(llm.NewLocalClient(), 512, 0.7)
	sessions := assistant.NewSessions(func(id string) *assistant.Session {
		return assistant.NewSession(id, store, assistant.KeywordClassifier{}, extractor, assistant.WithRecorder(recorder))
	})

	router := gin.New()
	RegisterRoutes(router, New(zerolog.Nop(), store, sessions), recorder.Handler())
	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seed(t *testing.T, tasks ...models.Task) {
	t.Helper()
	now := time.Now()
	for i := range tasks {
		tasks[i].CreatedAt = now
		tasks[i].UpdatedAt = now
	}
	require.NoError(t, s.store.Seed(context.Background(), tasks))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

type taskBody struct {
	Task models.Task `json:"task"`
}

type tasksBody struct {
	Tasks []models.Task `json:"tasks"`
}

type errorBody struct {
	Error string `json:"error"`
}

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: "t-1", Title: "Fix login bug", Status: models.StatusPending, Priority: models.PriorityHigh},
		{ID: "t-2", Title: "Write release notes", Status: models.StatusInProgress, Priority: models.PriorityLow},
		{ID: "t-3", Title: "Plan offsite", Status: models.StatusCompleted, Priority: models.PriorityMedium},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateTask(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		wantCode int
		check    func(t *testing.T, task models.Task)
	}{
		{
			name:     "defaults",
			body:     map[string]any{"title": "  Review Q3 budget "},
			wantCode: http.StatusCreated,
			check: func(t *testing.T, task models.Task) {
				assert.Equal(t, "Review Q3 budget", task.Title)
				assert.Equal(t, models.StatusPending, task.Status)
				assert.Equal(t, models.PriorityMedium, task.Priority)
				assert.Nil(t, task.DueDate)
				assert.Equal(t, task.CreatedAt, task.UpdatedAt)
			},
		},
		{
			name:     "labels and due date",
			body:     map[string]any{"title": "Ship it", "status": "In Progress", "priority": "High", "dueDate": "15/12/2030"},
			wantCode: http.StatusCreated,
			check: func(t *testing.T, task models.Task) {
				assert.Equal(t, models.StatusInProgress, task.Status)
				assert.Equal(t, models.PriorityHigh, task.Priority)
				require.NotNil(t, task.DueDate)
				assert.Equal(t, 15, task.DueDate.Day())
			},
		},
		{name: "missing title", body: map[string]any{"description": "x"}, wantCode: http.StatusBadRequest},
		{name: "blank title", body: map[string]any{"title": "   "}, wantCode: http.StatusBadRequest},
		{name: "bad priority", body: map[string]any{"title": "x", "priority": "urgent"}, wantCode: http.StatusBadRequest},
		{name: "bad due date", body: map[string]any{"title": "x", "dueDate": "someday"}, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.do(t, http.MethodPost, "/api/v1/tasks", tt.body)

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.check != nil {
				tt.check(t, decode[taskBody](t, rec).Task)
			} else {
				assert.NotEmpty(t, decode[errorBody](t, rec).Error)
			}
		})
	}
}

func TestListTasks(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode int
		wantIDs  []string
	}{
		{name: "all in insertion order", query: "", wantCode: http.StatusOK, wantIDs: []string{"t-1", "t-2", "t-3"}},
		{name: "by status label", query: "?status=in-progress", wantCode: http.StatusOK, wantIDs: []string{"t-2"}},
		{name: "by priority", query: "?priority=high", wantCode: http.StatusOK, wantIDs: []string{"t-1"}},
		{name: "search", query: "?q=OFFSITE", wantCode: http.StatusOK, wantIDs: []string{"t-3"}},
		{name: "no match", query: "?q=nothing", wantCode: http.StatusOK, wantIDs: nil},
		{name: "bad status", query: "?status=blocked", wantCode: http.StatusBadRequest},
		{name: "bad sort", query: "?sort=title", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.seed(t, sampleTasks()...)

			rec := s.do(t, http.MethodGet, "/api/v1/tasks"+tt.query, nil)

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}
			var ids []string
			for _, task := range decode[tasksBody](t, rec).Tasks {
				ids = append(ids, task.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestGetBoard(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, sampleTasks()...)

	rec := s.do(t, http.MethodGet, "/api/v1/tasks/board", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Columns []db.Column `json:"columns"`
	}](t, rec)
	require.Len(t, body.Columns, 4)
	assert.Equal(t, "Pending", body.Columns[0].Label)
	require.Len(t, body.Columns[1].Tasks, 1)
	assert.Equal(t, "t-2", body.Columns[1].Tasks[0].ID)
	assert.Empty(t, body.Columns[3].Tasks)
}

func TestGetTask(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, sampleTasks()...)

	rec := s.do(t, http.MethodGet, "/api/v1/tasks/t-3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Plan offsite", decode[taskBody](t, rec).Task.Title)

	rec = s.do(t, http.MethodGet, "/api/v1/tasks/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, db.ErrNotFound.Error(), decode[errorBody](t, rec).Error)
}

func TestUpdateTask(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		body     any
		wantCode int
		check    func(t *testing.T, task models.Task)
	}{
		{
			name:     "priority and status",
			id:       "t-1",
			body:     map[string]any{"priority": "LOW", "status": "completed"},
			wantCode: http.StatusOK,
			check: func(t *testing.T, task models.Task) {
				assert.Equal(t, models.PriorityLow, task.Priority)
				assert.Equal(t, models.StatusCompleted, task.Status)
				assert.Equal(t, "Fix login bug", task.Title)
				assert.True(t, task.UpdatedAt.After(task.CreatedAt))
			},
		},
		{
			name:     "due date",
			id:       "t-2",
			body:     map[string]any{"dueDate": "2030-01-31"},
			wantCode: http.StatusOK,
			check: func(t *testing.T, task models.Task) {
				require.NotNil(t, task.DueDate)
				assert.Equal(t, time.January, task.DueDate.Month())
			},
		},
		{name: "empty body", id: "t-1", body: map[string]any{}, wantCode: http.StatusBadRequest},
		{name: "unset status", id: "t-1", body: map[string]any{"status": ""}, wantCode: http.StatusBadRequest},
		{name: "blank title", id: "t-1", body: map[string]any{"title": " "}, wantCode: http.StatusBadRequest},
		{name: "missing task", id: "nope", body: map[string]any{"title": "x"}, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.seed(t, sampleTasks()...)

			rec := s.do(t, http.MethodPatch, "/api/v1/tasks/"+tt.id, tt.body)

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.check != nil {
				tt.check(t, decode[taskBody](t, rec).Task)
			}
		})
	}
}

func TestUpdateTaskClearsDueDate(t *testing.T) {
	for _, body := range []map[string]any{
		{"dueDate": ""},
		{"clearDueDate": true},
	} {
		s := newTestServer(t)
		s.seed(t, sampleTasks()...)

		rec := s.do(t, http.MethodPatch, "/api/v1/tasks/t-2", map[string]any{"dueDate": "2030-01-31"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotNil(t, decode[taskBody](t, rec).Task.DueDate)

		rec = s.do(t, http.MethodPatch, "/api/v1/tasks/t-2", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Nil(t, decode[taskBody](t, rec).Task.DueDate)

		rec = s.do(t, http.MethodGet, "/api/v1/tasks/t-2", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, decode[taskBody](t, rec).Task.DueDate)
	}
}

func TestDeleteTask(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, sampleTasks()...)

	rec := s.do(t, http.MethodDelete, "/api/v1/tasks/t-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t-2", decode[taskBody](t, rec).Task.ID)

	rec = s.do(t, http.MethodDelete, "/api/v1/tasks/t-2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/tasks", nil)
	assert.Len(t, decode[tasksBody](t, rec).Tasks, 2)
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "x"}).Code)

	rec := s.do(t, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `taskpilot_task_mutations_total{op="create"} 1`)
}
