// Package ratelimiter throttles HTTP clients with one token bucket per
// client address.
package ratelimiter

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Config configures a Limiter.
type Config struct {
	// RequestsPerSecond is the sustained rate per client. Zero disables
	// limiting.
	RequestsPerSecond float64

	// Burst is the bucket capacity. Values below 1 are raised to the
	// rounded-up rate.
	Burst int

	// IdleTimeout drops the bucket of a client that made no request for
	// this long. Default: 10m
	IdleTimeout time.Duration
}

// Limiter provides request rate limiting using the token bucket algorithm.
//
// The token bucket algorithm works as follows:
//  1. Tokens are added to the bucket at a constant rate (requests per second)
//  2. Each request consumes one token from the bucket
//  3. If the bucket is empty, the request is rejected
//  4. Burst capacity allows temporary spikes above the sustained rate
//
// Thread safety:
// All methods are safe for concurrent use.
type Limiter struct {
	limit rate.Limit
	burst int

	// mu serializes bucket creation so two first requests from one client
	// share a bucket
	mu      sync.Mutex
	buckets *cache.Cache
}

// New creates a Limiter. A zero rate yields a limiter that allows
// everything.
func New(config Config) *Limiter {
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = 10 * time.Minute
	}
	if config.RequestsPerSecond > 0 && config.Burst < 1 {
		config.Burst = int(config.RequestsPerSecond + 0.999)
	}

	return &Limiter{
		limit:   rate.Limit(config.RequestsPerSecond),
		burst:   config.Burst,
		buckets: cache.New(config.IdleTimeout, config.IdleTimeout),
	}
}

// Enabled reports whether the limiter rejects anything.
func (l *Limiter) Enabled() bool {
	return l.limit > 0
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets.Get(key); ok {
		// touch to extend the idle expiry
		l.buckets.SetDefault(key, b)
		return b.(*rate.Limiter)
	}
	b := rate.NewLimiter(l.limit, l.burst)
	l.buckets.SetDefault(key, b)
	return b
}

// Allow consumes a token from key's bucket. It returns false, leaving the
// bucket untouched, when none is available.
func (l *Limiter) Allow(key string) bool {
	if !l.Enabled() {
		return true
	}
	return l.bucket(key).Allow()
}

// Tokens returns the tokens currently left in key's bucket.
//
// This is primarily useful for monitoring and debugging.
func (l *Limiter) Tokens(key string) float64 {
	if !l.Enabled() {
		return float64(l.burst)
	}
	return l.bucket(key).Tokens()
}

// RetryAfter is the time a client with an empty bucket waits for one token.
func (l *Limiter) RetryAfter() time.Duration {
	if !l.Enabled() {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(l.limit))
}

// Middleware rejects requests over the limit with 429 Too Many Requests and
// a Retry-After header. Clients are keyed by echo's RealIP. onLimited, when
// set, is called for every rejected request.
func Middleware(l *Limiter, onLimited func()) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !l.Enabled() {
			return next
		}
		return func(c echo.Context) error {
			if l.Allow(c.RealIP()) {
				return next(c)
			}
			if onLimited != nil {
				onLimited()
			}
			seconds := int(l.RetryAfter().Round(time.Second) / time.Second)
			c.Response().Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		}
	}
}
