// resumatch-mcp — Resume-to-job matching MCP server.
//
// Exposes two MCP tools, match_resume and match_jobs_to_apply, which
// forward a resume plus optional filters to the job-matching backend and
// return the results as a Markdown artifact. Runs over stdio, HTTP, or as
// an edge-style handler, selected by MCP_TRANSPORT.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/resumatch/resumatch-mcp/internal/engine"
	"github.com/resumatch/resumatch-mcp/internal/transport/edge"
	"github.com/resumatch/resumatch-mcp/internal/transport/httpserver"
	"github.com/resumatch/resumatch-mcp/internal/transport/stdio"
)

var version = "dev"

func main() {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	transport := env.Str("MCP_TRANSPORT", "stdio")
	secret := env.Str("BACKEND_API_KEY", "")

	eng := engine.New(engine.Config{
		BackendURL:      env.Str("BACKEND_URL", "https://api.resumatch.dev"),
		BackendEndpoint: env.Str("BACKEND_ENDPOINT", "/server/match-resume-upload"),
		RequestTimeout:  env.Duration("REQUEST_TIMEOUT", 30*time.Second),
		RateLimit:       env.Int("RATE_LIMIT_PER_MINUTE", 10),
		RateWindow:      time.Minute,
		ResumeMinLen:    env.Int("RESUME_MIN_LENGTH", 500),
		ResumeMaxLen:    env.Int("RESUME_MAX_LENGTH", 15000),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The limiter never sweeps itself; housekeeping runs on a schedule.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@every 5m", func() {
		if removed := eng.Limiter().Cleanup(); removed > 0 {
			slog.Debug("rate limiter swept", slog.Int("sessions_removed", removed))
		}
	}); err != nil {
		slog.Error("scheduling limiter sweep failed", slog.Any("error", err))
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	slog.Info("starting resumatch-mcp",
		slog.String("transport", transport),
		slog.String("version", version),
	)

	var err error
	switch transport {
	case "stdio":
		requireSecret(secret)
		err = stdio.Run(ctx, eng, version, secret)

	case "http":
		requireSecret(secret)
		err = httpserver.Run(ctx, eng, httpserver.Config{
			Port:     env.Str("MCP_PORT", "3000"),
			MaxConns: env.Int("MAX_CONNS", 256),
			Version:  version,
		}, engine.StaticSecret(secret))

	case "edge":
		// The secret is resolved per request here; no startup check.
		err = runEdge(ctx, eng)

	default:
		slog.Error("unknown MCP_TRANSPORT", slog.String("transport", transport))
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// requireSecret enforces fail-fast startup: a long-lived process without a
// backend secret can never serve a successful call.
func requireSecret(secret string) {
	if secret == "" {
		slog.Error("BACKEND_API_KEY is required (include the scheme prefix, e.g. \"Bearer ...\")")
		os.Exit(1)
	}
}

func runEdge(ctx context.Context, eng *engine.Engine) error {
	handler := edge.NewHandler(eng, version, edge.EnvSecret("BACKEND_API_KEY"))
	srv := &http.Server{
		Addr:              ":" + env.Str("MCP_PORT", "3000"),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving edge handler", slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
