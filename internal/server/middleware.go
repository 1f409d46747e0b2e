package server

import (
	"log"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Context keys set by Auth for downstream handlers and middleware
const (
	ctxScope      = "scope"
	ctxAuthMethod = "auth_method"
)

// Auth authenticates every request from the Authorization header. The
// API key grants ScopeRunner; tokens carry their own scope, defaulting
// to ScopeViewer when they name none.
func Auth(auth *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := bearerToken(c)
		if credential == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "bearer credential required",
			})
			return
		}

		if auth.CheckAPIKey(credential) {
			c.Set(ctxAuthMethod, "api_key")
			c.Set(ctxScope, ScopeRunner)
			c.Next()
			return
		}

		claims, err := auth.ParseToken(credential)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid credentials",
			})
			return
		}

		scope := claims.Scope
		if scope == "" {
			scope = ScopeViewer
		}
		c.Set(ctxAuthMethod, "token")
		c.Set(ctxScope, scope)
		c.Next()
	}
}

// RequireScope gates a route group on the authenticated scope.
// ScopeRunner satisfies every requirement.
func RequireScope(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := c.GetString(ctxScope)
		if scope != required && scope != ScopeRunner {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient scope",
			})
			return
		}
		c.Next()
	}
}

// RateLimiter counts requests per client in fixed one-second windows
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*hitWindow
}

type hitWindow struct {
	start time.Time
	count int
}

func NewRateLimiter(requestsPerSecond int) *RateLimiter {
	return &RateLimiter{
		limit:   requestsPerSecond,
		window:  time.Second,
		clients: make(map[string]*hitWindow),
	}
}

// Allow records a hit for key and reports whether it is within the limit
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.evictStale(now)
		rl.clients[key] = &hitWindow{start: now, count: 1}
		return true
	}

	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// evictStale drops expired windows so the map does not grow with
// one-off clients. Caller holds the lock.
func (rl *RateLimiter) evictStale(now time.Time) {
	for key, w := range rl.clients {
		if now.Sub(w.start) >= rl.window {
			delete(rl.clients, key)
		}
	}
}

// RateLimit rejects clients that exceed the per-second request limit
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// RequestLogger writes one line per request after it completes
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Printf("%s %s -> %d in %v (client=%s auth=%s)",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
			c.GetString(ctxAuthMethod),
		)
	}
}

// Recovery converts handler panics into 500 responses, keeping the
// stack in the agent log
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] %v\n%s", r, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// CORS answers preflight requests and sets the allow-origin header for
// configured origins. A single "*" entry allows everything.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 1 && allowedOrigins[0] == "*"
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		default:
			if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
