package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/taskpilot/internal/config"
	"github.com/balkashynov/taskpilot/internal/db"
	"github.com/balkashynov/taskpilot/internal/llm"
	"github.com/balkashynov/taskpilot/internal/models"
)

// fakeClient returns canned responses and remembers the last request
type fakeClient struct {
	resp llm.CompletionResponse
	err  error
	last llm.CompletionRequest
}

func (f *fakeClient) Complete(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	f.last = req
	return f.resp, f.err
}

func (f *fakeClient) GetModelName() string { return "fake" }

// fakeExtractor returns a fixed extraction, optionally waiting on release
type fakeExtractor struct {
	extraction Extraction
	err        error
	started    chan struct{}
	release    chan struct{}
}

func (f *fakeExtractor) Extract(ctx context.Context, _ string) (Extraction, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return Extraction{}, ctx.Err()
		}
	}
	return f.extraction, f.err
}

func newStore(t *testing.T) *db.TaskStore {
	t.Helper()
	gormDB, err := db.Open(config.DBConfig{DSN: "file::memory:", LogLevel: "silent"}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gormDB) })
	return db.NewTaskStore(gormDB)
}

func seedTasks(t *testing.T, store *db.TaskStore, tasks ...models.Task) {
	t.Helper()
	now := time.Now()
	for i := range tasks {
		if tasks[i].Status == models.StatusUnset {
			tasks[i].Status = models.StatusPending
		}
		if tasks[i].Priority == models.PriorityUnset {
			tasks[i].Priority = models.PriorityMedium
		}
		tasks[i].CreatedAt = now
		tasks[i].UpdatedAt = now
	}
	require.NoError(t, store.Seed(context.Background(), tasks))
}

func listTasks(t *testing.T, store *db.TaskStore) []models.Task {
	t.Helper()
	tasks, err := store.List(context.Background())
	require.NoError(t, err)
	return tasks
}
