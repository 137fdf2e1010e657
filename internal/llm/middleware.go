package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TimeoutMiddleware bounds every request with its own deadline
func TimeoutMiddleware(duration time.Duration) Middleware {
	return func(next Client) Client {
		return WrapClient(next, func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
			timeoutCtx, cancel := context.WithTimeout(ctx, duration)
			defer cancel()
			return next.Complete(timeoutCtx, req)
		})
	}
}

// LoggingMiddleware logs each request at debug and failures at warn
func LoggingMiddleware(log zerolog.Logger) Middleware {
	return func(next Client) Client {
		return WrapClient(next, func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
			start := time.Now()
			resp, err := next.Complete(ctx, req)

			event := log.Debug()
			if err != nil {
				event = log.Warn().Err(err).Str("error_type", ErrorTypeOf(err))
			}
			tool := ""
			if req.Tool != nil {
				tool = req.Tool.Name
			}
			event.
				Str("model", next.GetModelName()).
				Str("tool", tool).
				Int("messages", len(req.Messages)).
				Int("tool_calls", len(resp.ToolCalls)).
				Dur("duration", time.Since(start)).
				Msg("llm request")

			return resp, err
		})
	}
}

// MetricsRecorder receives one observation per completed request
type MetricsRecorder interface {
	ObserveRequest(model string, success bool, errorType string, duration time.Duration)
}

// MetricsMiddleware records latency and outcome of every request
func MetricsMiddleware(recorder MetricsRecorder) Middleware {
	return func(next Client) Client {
		return WrapClient(next, func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
			start := time.Now()
			resp, err := next.Complete(ctx, req)
			recorder.ObserveRequest(next.GetModelName(), err == nil, ErrorTypeOf(err), time.Since(start))
			return resp, err
		})
	}
}
