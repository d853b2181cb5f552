// internal/middleware/rate_limit.go
package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/storefront-backend/internal/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	visitors map[string]*visitor
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
	}
}

// Cleanup forgets idle visitors every interval until stop is closed.
func (rl *RateLimiter) Cleanup(interval, idle time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rl.mtx.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastSeen) > idle {
					delete(rl.visitors, ip)
				}
			}
			rl.mtx.Unlock()
		}
	}
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getVisitor(c.ClientIP()).Allow() {
			utils.TooManyRequestsResponse(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Limiters groups the per-route-class limiters.
type Limiters struct {
	General  *RateLimiter
	Auth     *RateLimiter
	Checkout *RateLimiter
	Upload   *RateLimiter
}

func DefaultLimiters() *Limiters {
	return &Limiters{
		General:  NewRateLimiter(rate.Every(100*time.Millisecond), 20), // 10 requests per second
		Auth:     NewRateLimiter(rate.Every(12*time.Second), 5),       // 5 per minute
		Checkout: NewRateLimiter(rate.Every(2*time.Second), 10),
		Upload:   NewRateLimiter(rate.Every(6*time.Second), 10), // 10 per minute
	}
}

// StartCleanup runs Cleanup for every limiter.
func (l *Limiters) StartCleanup(stop <-chan struct{}) {
	for _, rl := range []*RateLimiter{l.General, l.Auth, l.Checkout, l.Upload} {
		go rl.Cleanup(time.Minute, 3*time.Minute, stop)
	}
}
