package middleware

import (
	"net/http"
	"time"

	"sync"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/polypulse/internal/logger"
)

// RequestLogger is a Gin middleware that logs method, path, status code,
// request latency, and request ID (if available).
//
// Behavior:
//   - Captures start time before request handling.
//   - After request is processed, calculates latency.
//   - Logs method, path, status, latency in ms, and request_id (if injected by RequestID()).
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.RequestLogger())
//
// Example log output:
//
//	request_id=123e4567-e89b-12d3-a456-426614174000 method=GET path=/api/v1/chart status=200 latency_ms=15
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Start timer
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		// Process request
		c.Next()

		// Compute latency and get status
		latency := time.Since(start)
		status := c.Writer.Status()

		// Get request_id if available
		rid, _ := c.Get(RequestIDKey)

		// Structured JSON log; chart requests also carry the selected market
		ev := logger.Component("http").Info()
		if m := c.Query("market"); m != "" {
			ev = ev.Str("market", m)
		}
		ev.
			Str("request_id", toString(rid)).
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Int64("latency_ms", latency.Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// client represents a rate-limited client: requests counted since windowStart
// and the last time it was seen.
type client struct {
	windowStart time.Time
	lastSeen    time.Time
	count       int
}

// Global in-memory store for rate limiting.
// NOTE: In production, consider Redis or another distributed store for multi-instance deployments.
var (
	clients         = make(map[string]*client)
	window          = time.Minute
	limit           = 60
	rateLimiterLock sync.Mutex

	// clock is swapped in tests to step through windows.
	clock = time.Now
)

// ConfigureRateLimit sets how many requests per window a client IP may make.
// Non-positive values keep the current setting. Call it before serving.
func ConfigureRateLimit(perWindow int, w time.Duration) {
	rateLimiterLock.Lock()
	defer rateLimiterLock.Unlock()
	if perWindow > 0 {
		limit = perWindow
	}
	if w > 0 {
		window = w
	}
}

// maxTrackedClients bounds the limiter map; idle entries are evicted past it.
const maxTrackedClients = 10000

// evictIdle drops clients not seen for a full window. Caller holds rateLimiterLock.
func evictIdle(now time.Time) {
	for ip, cl := range clients {
		if now.Sub(cl.lastSeen) > window {
			delete(clients, ip)
		}
	}
}

// RateLimiter is a simple in-memory middleware that limits the number of requests per client IP.
//
// Behavior:
//   - Allows up to `limit` requests per `window` (default: 60 requests per 1 minute),
//     counted in fixed windows that start at a client's first request.
//   - Identifies clients by their IP address.
//   - If limit exceeded, returns HTTP 429 Too Many Requests.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RateLimiter())
//
// Response when limit exceeded:
//
//	HTTP/1.1 429 Too Many Requests
//	{
//	    "error": "rate limit exceeded"
//	}
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := clock()

		rateLimiterLock.Lock()
		cl, ok := clients[ip]
		switch {
		case !ok:
			cl = &client{windowStart: now, lastSeen: now, count: 1}
			clients[ip] = cl
		case now.Sub(cl.windowStart) > window:
			// fixed window: a new one opens regardless of traffic in between
			cl.windowStart, cl.lastSeen, cl.count = now, now, 1
		default:
			cl.count++
			cl.lastSeen = now
		}
		exceeded := cl.count > limit
		if !ok && len(clients) > maxTrackedClients {
			evictIdle(now)
		}
		rateLimiterLock.Unlock()

		if exceeded {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
