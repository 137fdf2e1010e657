package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/taskpilot/internal/config"
)

type stubClient struct {
	calls int
	resp  CompletionResponse
	err   error
	seen  context.Context
}

func (s *stubClient) Complete(ctx context.Context, _ CompletionRequest) (CompletionResponse, error) {
	s.calls++
	s.seen = ctx
	return s.resp, s.err
}

func (s *stubClient) GetModelName() string { return "stub-model" }

type observation struct {
	model     string
	success   bool
	errorType string
}

type recordingMetrics struct {
	observations []observation
}

func (r *recordingMetrics) ObserveRequest(model string, success bool, errorType string, _ time.Duration) {
	r.observations = append(r.observations, observation{model, success, errorType})
}

func TestChainOrder(t *testing.T) {
	var order []string
	trace := func(name string) Middleware {
		return func(next Client) Client {
			return WrapClient(next, func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
				order = append(order, name)
				return next.Complete(ctx, req)
			})
		}
	}

	base := &stubClient{}
	client := Chain(base, trace("first"), trace("second"))

	_, err := client.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, 1, base.calls)
	assert.Equal(t, "stub-model", client.GetModelName())
}

func TestTimeoutMiddleware(t *testing.T) {
	base := &stubClient{}
	client := Chain(base, TimeoutMiddleware(time.Minute))

	_, err := client.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)

	deadline, ok := base.seen.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := &recordingMetrics{}

	ok := Chain(&stubClient{}, MetricsMiddleware(metrics))
	_, err := ok.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)

	failing := Chain(&stubClient{err: NewError(ErrorTypeRateLimit, "slow down")}, MetricsMiddleware(metrics))
	_, err = failing.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)

	assert.Equal(t, []observation{
		{"stub-model", true, ""},
		{"stub-model", false, "rate_limit"},
	}, metrics.observations)
}

func TestLoggingMiddlewareLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.WarnLevel)

	client := Chain(&stubClient{err: errors.New("boom")}, LoggingMiddleware(log))
	_, err := client.Complete(context.Background(), CompletionRequest{Tool: &Tool{Name: "extractTasks"}})
	require.Error(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "llm request", entry["message"])
	assert.Equal(t, "extractTasks", entry["tool"])
	assert.Equal(t, "unknown", entry["error_type"])
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusUnauthorized, ErrorTypeAuth},
		{http.StatusForbidden, ErrorTypeAuth},
		{http.StatusBadRequest, ErrorTypeBadRequest},
		{http.StatusBadGateway, ErrorTypeTransient},
		{http.StatusRequestTimeout, ErrorTypeTransient},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := classifyStatus(tt.status, errors.New("provider said no"))
			assert.Equal(t, tt.want, err.Type)

			var llmErr *Error
			wrapped := fmt.Errorf("extract: %w", err)
			require.True(t, errors.As(wrapped, &llmErr))
			assert.Equal(t, tt.want.String(), ErrorTypeOf(wrapped))
		})
	}

	assert.Equal(t, "transient", ErrorTypeOf(context.DeadlineExceeded))
	assert.Equal(t, "", ErrorTypeOf(nil))
}

func TestLocalClientClassifies(t *testing.T) {
	client := NewLocalClient()
	tests := map[string]string{
		"please update the priority of task #3 to High": "UPDATE",
		"delete the login bug task":                     "DELETE",
		"remind me to water the plants":                 "NONE",
	}

	for message, want := range tests {
		resp, err := client.Complete(context.Background(), CompletionRequest{
			Messages: []Message{NewSystemMessage("classify"), NewUserMessage(message)},
		})
		require.NoError(t, err)
		assert.Equal(t, want, resp.Content, message)
	}
}

func TestLocalClientExtractsDraft(t *testing.T) {
	client := NewLocalClient()
	tool := &Tool{Name: "extractTasks"}

	resp, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{NewUserMessage("Create a task to review the Q3 budget by Friday, high priority")},
		Tool:     tool,
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "extractTasks", resp.ToolCalls[0].Name)

	var args struct {
		Tasks []map[string]string `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(resp.ToolCalls[0].Arguments, &args))
	require.Len(t, args.Tasks, 1)
	assert.Equal(t, "Review the Q3 budget by Friday", args.Tasks[0]["title"])
	assert.Equal(t, "HIGH", args.Tasks[0]["priority"])

	resp, err = client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{NewUserMessage("create a task")},
		Tool:     tool,
	})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(resp.ToolCalls[0].Arguments, &args))
	assert.Empty(t, args.Tasks)
}

func TestOllamaClientStructuredOutput(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.1","message":{"role":"assistant","content":"{\"tasks\":[]}"},"done":true}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3.1", server.Client())
	resp, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{NewUserMessage("hi")},
		Tool:     &Tool{Name: "extractTasks", Parameters: map[string]any{"type": "object"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.JSONEq(t, `{"tasks":[]}`, string(resp.ToolCalls[0].Arguments))
	assert.Equal(t, map[string]any{"type": "object"}, got["format"])
	assert.Equal(t, false, got["stream"])
}

func TestOllamaClientStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"busy"}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3.1", server.Client())
	_, err := client.Complete(context.Background(), CompletionRequest{Messages: []Message{NewUserMessage("hi")}})
	require.Error(t, err)
	assert.Equal(t, "rate_limit", ErrorTypeOf(err))
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(config.LLMConfig{Provider: config.ProviderLocal, Timeout: time.Second}, zerolog.Nop(), &recordingMetrics{})
	require.NoError(t, err)
	assert.Equal(t, "local-keyword", client.GetModelName())

	_, err = NewClient(config.LLMConfig{Provider: "bard"}, zerolog.Nop(), nil)
	assert.Error(t, err)
}
