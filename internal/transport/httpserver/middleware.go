package httpserver

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Transport-level request metrics on a private registry, so /metrics
// carries only what this server emits.
var (
	registry = prometheus.NewRegistry()

	httpRequests = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumatch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumatch",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	throttled = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: "resumatch",
			Subsystem: "http",
			Name:      "throttled_total",
			Help:      "Requests rejected by the per-IP throttle.",
		},
	)
)

func metricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequests.WithLabelValues(route, c.Request.Method, status).Inc()
		httpDuration.WithLabelValues(route, c.Request.Method, status).Observe(time.Since(start).Seconds())
	}
}

// ipThrottle applies a token-bucket limit per client IP across the whole
// HTTP surface. This is transport hygiene, separate from the per-session
// sliding-window quota the tool pipeline enforces.
type ipThrottle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newIPThrottle(rps float64, burst int) *ipThrottle {
	return &ipThrottle{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (t *ipThrottle) limiter(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.limiters[ip]
	if !ok {
		l = rate.NewLimiter(t.rps, t.burst)
		t.limiters[ip] = l
	}
	return l
}

func (t *ipThrottle) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !t.limiter(c.ClientIP()).Allow() {
			throttled.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}
