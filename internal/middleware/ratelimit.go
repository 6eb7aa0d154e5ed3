package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Time window for rate limiting
	KeyPrefix         string        // Redis key prefix
}

// clientKey identifies the caller: the authenticated subject when known,
// otherwise the remote IP without its port
func clientKey(r *http.Request) string {
	if identity, ok := GetIdentity(r.Context()); ok {
		return "user:" + identity.UserID
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func writeRateLimitExceeded(w http.ResponseWriter, limit int, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(retryAfter).Unix(), 10))
	w.Header().Set("Retry-After", strconv.Itoa(seconds))

	RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
}

// RateLimitMiddleware implements fixed-window rate limiting shared through Redis.
// Redis failures let the request through.
func RateLimitMiddleware(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientKey(r)
			key := fmt.Sprintf("%s:%s", config.KeyPrefix, clientID)
			ctx := r.Context()

			count, err := redisClient.Incr(ctx, key).Result()
			if err != nil {
				logger.Error("Failed to increment rate limit counter",
					zap.Error(err),
					zap.String("key", key),
				)
				next.ServeHTTP(w, r)
				return
			}

			// Set expiry on first request
			if count == 1 {
				if err := redisClient.Expire(ctx, key, config.Window).Err(); err != nil {
					logger.Warn("Failed to set rate limit window", zap.Error(err), zap.String("key", key))
				}
			}

			if count > int64(config.RequestsPerWindow) {
				ttl, err := redisClient.TTL(ctx, key).Result()
				if err != nil || ttl < 0 {
					ttl = config.Window
				}

				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Int64("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)

				writeRateLimitExceeded(w, config.RequestsPerWindow, ttl)
				return
			}

			remaining := config.RequestsPerWindow - int(count)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// LocalRateLimiter keeps one token bucket per client in process memory.
// Buckets idle for a whole window are full again and get dropped.
type LocalRateLimiter struct {
	buckets   sync.Map
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep atomic.Int64
	now       func() time.Time
	logger    *zap.Logger
}

// NewLocalRateLimiter refills RequestsPerWindow tokens evenly over Window
func NewLocalRateLimiter(config RateLimitConfig, logger *zap.Logger) *LocalRateLimiter {
	l := &LocalRateLimiter{
		limit:  rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
		burst:  config.RequestsPerWindow,
		idle:   config.Window,
		now:    time.Now,
		logger: logger,
	}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

func (l *LocalRateLimiter) getLimiter(key string, now time.Time) *rate.Limiter {
	value, ok := l.buckets.Load(key)
	if !ok {
		value, _ = l.buckets.LoadOrStore(key, &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)})
	}
	bucket := value.(*clientBucket)
	bucket.lastSeen.Store(now.UnixNano())
	return bucket.limiter
}

// sweep drops idle buckets at most once per idle period
func (l *LocalRateLimiter) sweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(l.idle) || !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-l.idle).UnixNano()
	evicted := 0
	l.buckets.Range(func(key, value interface{}) bool {
		if value.(*clientBucket).lastSeen.Load() < cutoff {
			l.buckets.Delete(key)
			evicted++
		}
		return true
	})

	if evicted > 0 {
		l.logger.Debug("Evicted idle rate limit buckets", zap.Int("count", evicted))
	}
}

// Middleware returns the HTTP middleware enforcing the per-client buckets
func (l *LocalRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := l.now()
		l.sweep(now)

		clientID := clientKey(r)
		limiter := l.getLimiter(clientID, now)

		reservation := limiter.ReserveN(now, 1)
		if delay := reservation.DelayFrom(now); delay > 0 {
			reservation.CancelAt(now)

			l.logger.Warn("Rate limit exceeded",
				zap.String("client_id", clientID),
				zap.Int("limit", l.burst),
			)

			writeRateLimitExceeded(w, l.burst, delay)
			return
		}

		remaining := int(limiter.TokensAt(now))
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		next.ServeHTTP(w, r)
	})
}
