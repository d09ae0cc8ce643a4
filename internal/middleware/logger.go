package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/guttosm/tradesapi/internal/domain/dto"
	"github.com/guttosm/tradesapi/internal/logger"
)

// RequestLogger is a Gin middleware that logs method, path, status code,
// response size, request latency, and request ID (if available).
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.RequestLogger())
//
// Example log output:
//
//	{"level":"info","request_id":"…","method":"GET","path":"/trades/1","status":404,"bytes":29,"latency_ms":0,"message":"http_request"}
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		rid, _ := c.Get(RequestIDKey)

		ev := logger.L().Info()
		if status >= http.StatusInternalServerError {
			ev = logger.L().Error()
		}
		ev.
			Str("request_id", toString(rid)).
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
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

// client is the token bucket of one client IP and when it was last used.
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore hands out one token bucket per client IP and forgets idle ones.
// Idle clients are swept at most once per idleTTL.
type limiterStore struct {
	mu        sync.Mutex
	clients   map[string]*client
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	nextSweep time.Time
}

func newLimiterStore(rps float64, burst int, idleTTL time.Duration) *limiterStore {
	return &limiterStore{
		clients: make(map[string]*client),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
	}
}

func (s *limiterStore) allow(ip string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !now.Before(s.nextSweep) {
		for k, cl := range s.clients {
			if now.Sub(cl.lastSeen) > s.idleTTL {
				delete(s.clients, k)
			}
		}
		s.nextSweep = now.Add(s.idleTTL)
	}

	cl, ok := s.clients[ip]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// RateLimiter limits each client IP to rps requests per second with bursts of
// up to burst requests. A non-positive rps disables limiting.
//
// Response when limit exceeded:
//
//	HTTP/1.1 429 Too Many Requests
//	{"message": "rate limit exceeded", "timestamp": "…"}
func RateLimiter(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	store := newLimiterStore(rps, burst, 10*time.Minute)

	return func(c *gin.Context) {
		if !store.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse("rate limit exceeded", nil))
			return
		}
		c.Next()
	}
}
