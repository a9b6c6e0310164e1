package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// sweepEvery is how many checks pass between purges of idle clients.
const sweepEvery = 512

// slidingLog admits at most max hits per client in any trailing window.
type slidingLog struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	hits   map[string][]time.Time
	checks int
	now    func() time.Time
}

func newSlidingLog(limit int, window time.Duration) *slidingLog {
	return &slidingLog{
		max:    limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// admit records a hit for key when allowed. A refused hit is not recorded
// and comes back with the wait until the oldest hit leaves the window.
func (l *slidingLog) admit(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	l.checks++
	if l.checks%sweepEvery == 0 {
		for k, ts := range l.hits {
			if !ts[len(ts)-1].After(cutoff) {
				delete(l.hits, k)
			}
		}
	}

	ts := l.hits[key]
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	ts = ts[i:]

	if len(ts) >= l.max {
		l.hits[key] = ts
		return false, ts[0].Sub(cutoff)
	}
	l.hits[key] = append(ts, now)
	return true, 0
}

// RateLimit caps each client IP at maxRequests in any trailing window and
// answers 429 with a Retry-After header beyond that.
func RateLimit(maxRequests int, window time.Duration) echo.MiddlewareFunc {
	return rateLimitWith(newSlidingLog(maxRequests, window))
}

func rateLimitWith(l *slidingLog) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, wait := l.admit(c.RealIP())
			if !ok {
				secs := int(wait.Round(time.Second) / time.Second)
				c.Response().Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
