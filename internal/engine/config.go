package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	BackendURL      string        // job-matching backend origin, no trailing slash
	BackendEndpoint string        // upload path on the backend
	RequestTimeout  time.Duration // hard deadline for one backend call
	RateLimit       int           // allowed tool calls per session per window
	RateWindow      time.Duration
	ResumeMinLen    int // resume length bounds, in runes
	ResumeMaxLen    int
	HTTPClient      *http.Client // nil = default client bounded by RequestTimeout
}

func (c Config) withDefaults() Config {
	if c.BackendEndpoint == "" {
		c.BackendEndpoint = "/server/match-resume-upload"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 10
	}
	if c.RateWindow <= 0 {
		c.RateWindow = time.Minute
	}
	if c.ResumeMinLen <= 0 {
		c.ResumeMinLen = 500
	}
	if c.ResumeMaxLen <= 0 {
		c.ResumeMaxLen = 15000
	}
	return c
}

// Engine bundles the validator bounds, rate limiter and backend client
// shared by every transport. One instance per process, passed by reference.
type Engine struct {
	cfg     Config
	limiter *RateLimiter
	backend *BackendClient
}

// New builds an engine from the given configuration, filling defaults.
func New(c Config) *Engine {
	c = c.withDefaults()
	return &Engine{
		cfg:     c,
		limiter: NewRateLimiter(c.RateLimit, c.RateWindow),
		backend: newBackendClient(c),
	}
}

// Cfg returns the effective configuration after defaults.
func (e *Engine) Cfg() Config { return e.cfg }

// Limiter returns the shared per-session rate limiter.
func (e *Engine) Limiter() *RateLimiter { return e.limiter }

// Backend returns the job-matching backend client.
func (e *Engine) Backend() *BackendClient { return e.backend }
