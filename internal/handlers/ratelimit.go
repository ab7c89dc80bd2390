package handlers

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	scopeAuth    = "auth"
	scopeDevices = "devices"

	errTooManyRequests = "too many attempts, try again later"
)

// RateLimit allows Attempts requests per Window for one key. A zero value disables limiting.
type RateLimit struct {
	Attempts int
	Window   time.Duration
}

func (rl RateLimit) enabled() bool { return rl.Attempts > 0 && rl.Window > 0 }

// keyedLimiter holds one token bucket per key, refilled at Attempts per Window.
type keyedLimiter struct {
	every time.Duration
	burst int
	idle  time.Duration
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	swept   time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newKeyedLimiter(rl RateLimit) *keyedLimiter {
	if !rl.enabled() {
		return nil
	}
	return &keyedLimiter{
		every:   rl.Window / time.Duration(rl.Attempts),
		burst:   rl.Attempts,
		idle:    rl.Window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// allow spends one token for key. Buckets idle for a full window are full
// again, so they are forgotten.
func (k *keyedLimiter) allow(key string) bool {
	now := k.now()
	k.mu.Lock()
	defer k.mu.Unlock()

	if now.Sub(k.swept) > k.idle {
		for id, b := range k.buckets {
			if now.Sub(b.seen) > k.idle {
				delete(k.buckets, id)
			}
		}
		k.swept = now
	}

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Every(k.every), k.burst)}
		k.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// retryAfter is the time until one token is back, in whole seconds.
func (k *keyedLimiter) retryAfter() string {
	return strconv.Itoa(int(math.Ceil(k.every.Seconds())))
}

// rateLimit rejects requests over l's budget with 429. A nil limiter passes everything.
func (h *Handler) rateLimit(scope string, l *keyedLimiter, keyOf func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		key := keyOf(c)
		if l.allow(key) {
			c.Next()
			return
		}
		h.metrics.RateLimited(scope)
		if h.log != nil {
			h.log.Infow("rate_limited", "scope", scope, "key", key, "path", c.FullPath())
		}
		c.Header("Retry-After", l.retryAfter())
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": errTooManyRequests})
	}
}

func clientIP(c *gin.Context) string { return c.ClientIP() }

// accountKey must run after sessionMiddleware.
func accountKey(c *gin.Context) string {
	return "account:" + strconv.Itoa(sessionFrom(c).AccountID)
}
