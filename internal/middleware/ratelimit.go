package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gamehaqqs/gamehaqqs/pkg/errors"
	"github.com/gamehaqqs/gamehaqqs/pkg/response"
)

// ErrTooManyRequests is returned once a client exhausts its window.
var ErrTooManyRequests = errors.New("RATE_LIMITED", "Too many requests", 429)

// RateLimit limits requests per (client IP, route) within a fixed window. Counters live in
// process memory, so limits apply per instance.
func RateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	if maxRequests <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	type counter struct {
		count     int
		windowEnd time.Time
	}

	var (
		mu        sync.Mutex
		data      = make(map[string]*counter)
		lastSweep = time.Now()
	)

	return func(c *gin.Context) {
		key := c.ClientIP() + "|" + c.FullPath()
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > window {
			for k, v := range data {
				if now.After(v.windowEnd) {
					delete(data, k)
				}
			}
			lastSweep = now
		}
		ct, ok := data[key]
		if !ok || now.After(ct.windowEnd) {
			ct = &counter{windowEnd: now.Add(window)}
			data[key] = ct
		}
		ct.count++
		count := ct.count
		resetIn := ct.windowEnd.Sub(now)
		mu.Unlock()

		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(resetIn.Seconds())))

		if count > maxRequests {
			response.Error(c, ErrTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}
