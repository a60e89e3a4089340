package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ToolCalls          atomic.Int64
	MatchResumeCalls   atomic.Int64
	MatchJobsCalls     atomic.Int64
	ValidationFailures atomic.Int64
	RateLimited        atomic.Int64
	BackendCalls       atomic.Int64
	BackendErrors      atomic.Int64
	TransportErrors    atomic.Int64
	EmptyResults       atomic.Int64
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"tool_calls":          metrics.ToolCalls.Load(),
		"match_resume_calls":  metrics.MatchResumeCalls.Load(),
		"match_jobs_calls":    metrics.MatchJobsCalls.Load(),
		"validation_failures": metrics.ValidationFailures.Load(),
		"rate_limited":        metrics.RateLimited.Load(),
		"backend_calls":       metrics.BackendCalls.Load(),
		"backend_errors":      metrics.BackendErrors.Load(),
		"transport_errors":    metrics.TransportErrors.Load(),
		"empty_results":       metrics.EmptyResults.Load(),
	}
}

// FormatMetrics returns counters as a simple text format for the HTTP
// stats endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"tool_calls", "match_resume_calls", "match_jobs_calls",
		"validation_failures", "rate_limited",
		"backend_calls", "backend_errors", "transport_errors",
		"empty_results",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the tool-call pipeline.
func IncrToolCalls()          { metrics.ToolCalls.Add(1) }
func IncrMatchResumeCalls()   { metrics.MatchResumeCalls.Add(1) }
func IncrMatchJobsCalls()     { metrics.MatchJobsCalls.Add(1) }
func IncrValidationFailures() { metrics.ValidationFailures.Add(1) }
func IncrRateLimited()        { metrics.RateLimited.Add(1) }
func IncrBackendCalls()       { metrics.BackendCalls.Add(1) }
func IncrBackendErrors()      { metrics.BackendErrors.Add(1) }
func IncrTransportErrors()    { metrics.TransportErrors.Add(1) }
func IncrEmptyResults()       { metrics.EmptyResults.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
