// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/usha3107/multi-tenant-saas/internal/core"
)

type RateLimitConfig struct {
	Limit   redis_rate.Limit
	KeyFunc func(*http.Request) string
}

// RateLimiter enforces a shared budget through Redis (GCRA via redis_rate)
// and degrades to per-process token buckets while Redis is unreachable.
type RateLimiter struct {
	shared *redis_rate.Limiter
	local  *bucketSet
	limit  redis_rate.Limit
	key    func(*http.Request) string
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	key := cfg.KeyFunc
	if key == nil {
		key = KeyByIP
	}
	return &RateLimiter{
		shared: redis_rate.NewLimiter(rdb),
		local:  newBucketSet(cfg.Limit),
		limit:  cfg.Limit,
		key:    key,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.key(r)

		res, err := rl.shared.Allow(r.Context(), key, rl.limit)
		if err != nil {
			slog.DebugContext(r.Context(), "shared rate limiter unavailable, using local bucket",
				"key", key,
				"error", err,
			)
			res = rl.local.take(key, time.Now())
		}

		writeLimitHeaders(w.Header(), rl.limit, res)

		if res.Allowed == 0 {
			rejectLimited(w, res.RetryAfter)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func KeyByIP(r *http.Request) string {
	return "ratelimit:ip:" + ClientIP(r)
}

func KeyByUser(r *http.Request) string {
	if id := GetUserID(r.Context()); id != "" {
		return "ratelimit:user:" + id
	}
	return KeyByIP(r)
}

// KeyByTenant shares one budget across every user of a tenant.
func KeyByTenant(r *http.Request) string {
	if id := GetTenantID(r.Context()); id != "" {
		return "ratelimit:tenant:" + id
	}
	return KeyByUser(r)
}

// KeyByIPAndEndpoint collapses path identifiers so that one client cannot
// dodge the limit by varying ids.
func KeyByIPAndEndpoint(r *http.Request) string {
	return KeyByIP(r) + ":endpoint:" + routeShape(r.URL.Path)
}

func routeShape(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		if looksLikeID(s) {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

func looksLikeID(s string) bool {
	if s == "" {
		return false
	}
	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		return true
	}
	return uuid.Validate(s) == nil
}

func writeLimitHeaders(h http.Header, limit redis_rate.Limit, res *redis_rate.Result) {
	reset := int(res.ResetAfter.Seconds())

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf("%d;t=%d", res.Remaining, reset))
}

func rejectLimited(w http.ResponseWriter, wait time.Duration) {
	secs := max(int(wait.Seconds()), 1)

	w.Header().Set("Retry-After", strconv.Itoa(secs))
	core.JSON(w, http.StatusTooManyRequests, core.Envelope{
		Message: fmt.Sprintf("rate limit exceeded, retry after %d seconds", secs),
		Code:    "RATE_LIMITED",
	})
}

const (
	bucketIdleTTL = 10 * time.Minute
	sweepEvery    = 5 * time.Minute
)

type bucket struct {
	tokens   *rate.Limiter
	lastSeen time.Time
}

// bucketSet holds one token bucket per key. Idle buckets are swept on
// access instead of by a background goroutine.
type bucketSet struct {
	mu        sync.Mutex
	limit     redis_rate.Limit
	every     time.Duration
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newBucketSet(limit redis_rate.Limit) *bucketSet {
	every := time.Second
	if limit.Rate > 0 {
		every = limit.Period / time.Duration(limit.Rate)
	}
	return &bucketSet{
		limit:     limit,
		every:     every,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

func (s *bucketSet) take(key string, now time.Time) *redis_rate.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= sweepEvery {
		for k, b := range s.buckets {
			if now.Sub(b.lastSeen) > bucketIdleTTL {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tokens: rate.NewLimiter(rate.Every(s.every), s.limit.Burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now

	res := &redis_rate.Result{
		Limit:      s.limit,
		RetryAfter: -1,
		ResetAfter: s.every,
	}
	if b.tokens.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = s.every
	}
	res.Remaining = max(int(b.tokens.TokensAt(now)), 0)

	return res
}

// Per builds a limit of rate requests per period. A zero period means one
// minute and a zero burst means rate.
func Per(rate, burst int, period time.Duration) redis_rate.Limit {
	if period <= 0 {
		period = time.Minute
	}
	if burst <= 0 {
		burst = rate
	}
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: period}
}
