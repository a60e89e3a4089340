// Package edge exposes the matching tools as a plain http.Handler for
// FaaS-style hosting. Edge runtimes forbid module-load-time secret
// access, so the backend secret is resolved per request through a
// SecretSource, and session identity comes from forwarding headers.
package edge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/resumatch/resumatch-mcp/internal/engine"
	"github.com/resumatch/resumatch-mcp/internal/matchserver"
)

const serverName = "resumatch"

// SecretSource resolves the backend Authorization value from one request's
// scope.
type SecretSource func(r *http.Request) (string, error)

// EnvSecret reads the secret from the named environment variable at
// request time, the closest a Go host gets to request-scoped env bindings.
func EnvSecret(name string) SecretSource {
	return func(*http.Request) (string, error) {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			return "", errors.New("secret " + name + " not set")
		}
		return v, nil
	}
}

// NewHandler builds the edge route surface: the MCP streamable endpoint
// plus the same auxiliary REST routes the HTTP transport serves.
func NewHandler(eng *engine.Engine, version string, secret SecretSource) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return matchserver.New(eng, matchserver.Options{
			Version:   version,
			SessionID: SessionID(r),
			Secret:    requestSecret(r, secret),
		})
	}, nil))

	mux.HandleFunc("GET /{$}", sseKeepAlive(version))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"server":  serverName,
			"version": version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("GET /mcp/tools", func(w http.ResponseWriter, r *http.Request) {
		tools := matchserver.Descriptors()
		writeJSON(w, http.StatusOK, map[string]any{"tools": tools, "count": len(tools)})
	})

	mux.HandleFunc("GET /mcp/tools/{name}", func(w http.ResponseWriter, r *http.Request) {
		d, ok := matchserver.Descriptor(r.PathValue("name"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown tool: " + r.PathValue("name")})
			return
		}
		writeJSON(w, http.StatusOK, d)
	})

	mux.HandleFunc("POST /mcp/tools/call", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name      string            `json:"name"`
			Arguments engine.MatchInput `json:"arguments"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
			return
		}

		env := eng.HandleToolCall(r.Context(), req.Name, req.Arguments, SessionID(r), requestSecret(r, secret))
		writeJSON(w, restStatus(env), map[string]any{
			"server":    serverName,
			"version":   version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"result":    env,
		})
	})

	return mux
}

// requestSecret binds a SecretSource to one request so the pipeline's
// SecretProvider stays transport-agnostic.
func requestSecret(r *http.Request, secret SecretSource) engine.SecretProvider {
	return func(context.Context) (string, error) {
		return secret(r)
	}
}

// SessionID derives the rate-limit bucket from forwarding headers, in the
// order edge proxies set them, falling back to the peer address.
func SessionID(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func restStatus(env *engine.Envelope) int {
	switch env.Metadata.Status {
	case engine.StatusValidation:
		return http.StatusBadRequest
	case engine.StatusRateLimited:
		return http.StatusTooManyRequests
	case engine.StatusBackendError, engine.StatusTransportError:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

// sseKeepAlive mirrors the HTTP transport's keep-alive stream: a ready
// event, then pings until the client disconnects.
func sseKeepAlive(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")

		fmt.Fprintf(w, "event: ready\ndata: {\"server\":%q,\"version\":%q}\n\n", serverName, version)
		flusher.Flush()

		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case t := <-ticker.C:
				fmt.Fprintf(w, "event: ping\ndata: %q\n\n", t.UTC().Format(time.RFC3339))
				flusher.Flush()
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
