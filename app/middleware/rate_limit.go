package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"folio/app/logger"

	"github.com/redis/go-redis/v9"
)

// Counter counts hits per key within an expiring window. Incr starts the
// window on a key that has none in the same step as the increment.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter is a Counter backed by INCR and EXPIRE NX in one MULTI.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimit allows each client limit requests per path within window and
// answers 429 beyond that. When the counter fails the request is let
// through. A nil counter disables limiting.
func RateLimit(counter Counter, limit int, window time.Duration, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if counter == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("rate_limit:%s:%s", r.URL.Path, clientIP(r))

			count, err := counter.Incr(r.Context(), key, window)
			if err != nil {
				log.Warn("Rate limit check failed, allowing request: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(limit) {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
				WriteError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, as set by the hosting proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
