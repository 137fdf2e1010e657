package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	rec := NewPrometheusRecorder()

	rec.ObserveSubmission("update", "completed", "updated", 20*time.Millisecond)
	rec.ObserveSubmission("update", "completed", "updated", 30*time.Millisecond)
	rec.ObserveSubmission("create", "failed", "transport_failure", time.Second)
	rec.ObserveMutation("create")
	rec.ObserveRequest("gpt-4o-mini", true, "", 100*time.Millisecond)
	rec.ObserveRequest("gpt-4o-mini", false, "rate_limit", 100*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.submissionsTotal.WithLabelValues("update", "completed", "updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.submissionsTotal.WithLabelValues("create", "failed", "transport_failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.mutationsTotal.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.llmRequestsTotal.WithLabelValues("gpt-4o-mini", "error", "rate_limit")))
}

func TestRecordersDoNotCollide(t *testing.T) {
	first := NewPrometheusRecorder()
	second := NewPrometheusRecorder()

	first.ObserveMutation("delete")
	assert.Equal(t, 0.0, testutil.ToFloat64(second.mutationsTotal.WithLabelValues("delete")))
}

func TestHandler(t *testing.T) {
	rec := NewPrometheusRecorder()
	rec.ObserveMutation("update")

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `taskpilot_task_mutations_total{op="update"} 1`), body)
}
