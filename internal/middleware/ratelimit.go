package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client. Stale buckets are swept
// periodically so the map does not grow with every address ever seen.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	rps      rate.Limit
	burst    int
	maxIdle  time.Duration
	logger   *log.Logger
	stopOnce sync.Once
	stop     chan struct{}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int, logger *log.Logger) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(rps),
		burst:   burst,
		maxIdle: 5 * time.Minute,
		logger:  logger.With("component", "ratelimit"),
		stop:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow consumes one token for the client, creating its bucket on first use.
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cl, ok := rl.clients[clientID]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[clientID] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter.Allow()
}

// Middleware enforces the limit per authenticated user, falling back to the
// client address before authentication runs.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetString("user_id")
		if clientID == "" {
			clientID = c.ClientIP()
		}
		if !rl.Allow(clientID) {
			rl.logger.Warn("rate limit exceeded", "client", clientID, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.maxIdle)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.maxIdle)
			rl.mu.Lock()
			for id, cl := range rl.clients {
				if cl.lastSeen.Before(cutoff) {
					delete(rl.clients, id)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}
