package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/resumatch/resumatch-mcp/internal/engine/render"
)

// Tool names exposed over every transport.
const (
	ToolMatchResume = "match_resume"
	ToolMatchJobs   = "match_jobs_to_apply"
)

// SecretProvider resolves the backend Authorization value for one call.
// Edge-style hosts resolve it per request; long-lived processes use
// StaticSecret.
type SecretProvider func(ctx context.Context) (string, error)

// StaticSecret returns a provider that always yields the given value.
func StaticSecret(secret string) SecretProvider {
	return func(context.Context) (string, error) { return secret, nil }
}

// HandleToolCall runs the full pipeline for one tool invocation: validate,
// rate-limit, call the backend, transform, render. Validation and
// rate-limit failures short-circuit before the backend call. Every path
// returns the artifact envelope; callers never see a raw error.
func (e *Engine) HandleToolCall(ctx context.Context, tool string, in MatchInput, sessionID string, secret SecretProvider) *Envelope {
	started := time.Now()
	IncrToolCalls()

	mode := ModeFull
	switch tool {
	case ToolMatchResume:
		IncrMatchResumeCalls()
	case ToolMatchJobs:
		IncrMatchJobsCalls()
		mode = ModeIndexOnly
	default:
		IncrValidationFailures()
		violations := []string{"unknown tool: " + tool}
		return e.errorEnvelope(tool, StatusValidation, ValidationDocument(violations),
			e.limiter.Status(sessionID), started, &ErrorInfo{Type: "validation", Detail: violations})
	}

	if ok, violations := e.Validate(in); !ok {
		IncrValidationFailures()
		slog.Info("tool call rejected by validation",
			slog.String("tool", tool),
			slog.String("session", sessionID),
			slog.Int("violations", len(violations)),
		)
		return e.errorEnvelope(tool, StatusValidation, ValidationDocument(violations),
			e.limiter.Status(sessionID), started, &ErrorInfo{Type: "validation", Detail: violations})
	}

	quota := e.limiter.Check(sessionID)
	if !quota.Allowed {
		IncrRateLimited()
		slog.Info("tool call rate limited",
			slog.String("tool", tool),
			slog.String("session", sessionID),
			slog.Time("reset", quota.ResetTime),
		)
		return e.errorEnvelope(tool, StatusRateLimited, RateLimitDocument(quota),
			quota, started, &ErrorInfo{Type: "rate_limit"})
	}

	sec, err := secret(ctx)
	if err != nil || sec == "" {
		IncrTransportErrors()
		slog.Error("backend secret unavailable", slog.Any("error", err))
		return e.errorEnvelope(tool, StatusTransportError, TransportErrorDocument(),
			quota, started, &ErrorInfo{Type: "transport"})
	}

	req := Sanitize(in)
	IncrBackendCalls()
	var resp *BackendResponse
	err = TrackOperation(ctx, "backend_match", func(ctx context.Context) error {
		var callErr error
		resp, callErr = e.backend.Match(ctx, req, sec)
		return callErr
	})
	if err != nil {
		var be *BackendError
		if errors.As(err, &be) {
			IncrBackendErrors()
			slog.Warn("backend rejected match request",
				slog.String("tool", tool),
				slog.Int("status", be.Status),
			)
			return e.errorEnvelope(tool, StatusBackendError, BackendErrorDocument(be.Status, be.Data),
				quota, started, &ErrorInfo{Type: "backend", Status: be.Status})
		}
		IncrTransportErrors()
		slog.Warn("backend call failed", slog.String("tool", tool), slog.Any("error", err))
		return e.errorEnvelope(tool, StatusTransportError, TransportErrorDocument(),
			quota, started, &ErrorInfo{Type: "transport"})
	}

	report := Transform(resp, req, quota)
	if len(report.Jobs) == 0 {
		IncrEmptyResults()
	}

	env := newEnvelope(tool, StatusSuccess, MatchDocument(report, mode), quota, started)
	env.Metadata.TotalMatches = report.Meta.Total
	env.Metadata.Page = report.Meta.Page
	env.Metadata.TotalPages = report.Meta.TotalPages
	env.Metadata.HasMore = report.Meta.HasMore
	env.Metadata.ExtractedSkills = report.Meta.Skills
	env.Metadata.UserExperience = in.UserExperience

	slog.Info("tool call complete",
		slog.String("tool", tool),
		slog.String("session", sessionID),
		slog.Int("matches", report.Meta.Total),
		slog.Int64("duration_ms", env.Performance.DurationMS),
	)
	return env
}

func (e *Engine) errorEnvelope(tool, status string, doc render.Document, quota Decision, started time.Time, info *ErrorInfo) *Envelope {
	env := newEnvelope(tool, status, doc, quota, started)
	env.Metadata.Error = info
	return env
}
