// Package httpserver hosts the matching tools behind a gin router: the
// MCP streamable HTTP endpoint, an auxiliary REST surface, an SSE
// keep-alive stream, and operational endpoints. Session identity is the
// client IP.
package httpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/net/netutil"

	"github.com/resumatch/resumatch-mcp/internal/engine"
	"github.com/resumatch/resumatch-mcp/internal/matchserver"
)

const serverName = "resumatch"

// Config tunes the HTTP front-end.
type Config struct {
	Port          string
	MaxConns      int     // concurrent connection cap on the listener
	ThrottleRPS   float64 // per-IP request rate for the whole surface
	ThrottleBurst int
	Version       string
}

func (c Config) withDefaults() Config {
	if c.Port == "" {
		c.Port = "3000"
	}
	if c.MaxConns <= 0 {
		c.MaxConns = 256
	}
	if c.ThrottleRPS <= 0 {
		c.ThrottleRPS = 20
	}
	if c.ThrottleBurst <= 0 {
		c.ThrottleBurst = 40
	}
	return c
}

// Run serves until the context is cancelled, then shuts down gracefully.
func Run(ctx context.Context, eng *engine.Engine, cfg Config, secret engine.SecretProvider) error {
	cfg = cfg.withDefaults()

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(eng, cfg, secret)

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return err
	}
	ln = netutil.LimitListener(ln, cfg.MaxConns)

	srv := &http.Server{
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// No WriteTimeout: the SSE keep-alive stream stays open until the
		// client disconnects.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown failed", slog.Any("error", err))
		}
	}()

	slog.Info("serving MCP over HTTP",
		slog.String("port", cfg.Port),
		slog.Int("max_conns", cfg.MaxConns),
		slog.String("version", cfg.Version),
	)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("http server stopped")
	return nil
}

// NewRouter assembles the full route surface. Split out from Run so tests
// can drive it with httptest.
func NewRouter(eng *engine.Engine, cfg Config, secret engine.SecretProvider) *gin.Engine {
	cfg = cfg.withDefaults()

	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Mcp-Session-Id"}
	router.Use(cors.New(corsCfg))

	router.Use(newIPThrottle(cfg.ThrottleRPS, cfg.ThrottleBurst).middleware())
	router.Use(metricsMiddleware())

	// One MCP server per HTTP session, keyed to the caller's IP.
	mcpHandler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return matchserver.New(eng, matchserver.Options{
			Version:   cfg.Version,
			SessionID: clientSession(r),
			Secret:    secret,
		})
	}, nil)
	router.Any("/mcp", gin.WrapH(mcpHandler))

	router.GET("/", sseKeepAlive(cfg.Version))
	router.GET("/health", healthHandler(eng, cfg.Version))
	router.GET("/stats", statsHandler)
	router.GET("/metrics", gin.WrapH(metricsHandler()))

	router.GET("/mcp/tools", listToolsHandler)
	router.GET("/mcp/tools/:name", getToolHandler)
	router.POST("/mcp/tools/call", callToolHandler(eng, cfg.Version, secret))

	return router
}

func clientSession(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func healthHandler(eng *engine.Engine, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"server":   serverName,
			"version":  version,
			"time":     time.Now().UTC().Format(time.RFC3339),
			"sessions": eng.Limiter().Sessions(),
		})
	}
}

func statsHandler(c *gin.Context) {
	c.String(http.StatusOK, engine.FormatMetrics())
}

func listToolsHandler(c *gin.Context) {
	tools := matchserver.Descriptors()
	c.JSON(http.StatusOK, gin.H{"tools": tools, "count": len(tools)})
}

func getToolHandler(c *gin.Context) {
	d, ok := matchserver.Descriptor(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown tool: " + c.Param("name")})
		return
	}
	c.JSON(http.StatusOK, d)
}

// callRequest is the REST body for POST /mcp/tools/call.
type callRequest struct {
	Name      string            `json:"name" binding:"required"`
	Arguments engine.MatchInput `json:"arguments"`
}

func callToolHandler(eng *engine.Engine, version string, secret engine.SecretProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req callRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		env := eng.HandleToolCall(c.Request.Context(), req.Name, req.Arguments, c.ClientIP(), secret)
		c.JSON(restStatus(env), gin.H{
			"server":    serverName,
			"version":   version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"result":    env,
		})
	}
}

// restStatus maps the envelope outcome onto an HTTP status for the REST
// surface. The envelope itself is identical on every path.
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

// sseKeepAlive holds a Server-Sent-Events stream open, pinging every 15s
// until the client goes away. A disconnect only tears down this stream,
// never an in-flight tool call.
func sseKeepAlive(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Cache-Control", "no-cache")

		c.SSEvent("ready", gin.H{"server": serverName, "version": version})
		c.Writer.Flush()

		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		c.Stream(func(io.Writer) bool {
			select {
			case <-c.Request.Context().Done():
				return false
			case t := <-ticker.C:
				c.SSEvent("ping", t.UTC().Format(time.RFC3339))
				return true
			}
		})
	}
}
