package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/quillfeed/quillfeed/internal/cache"
)

// LoginRateLimitConfig holds configuration for login throttling.
type LoginRateLimitConfig struct {
	Logger      *slog.Logger
	Cache       *cache.Cache
	Enabled     bool
	MaxAttempts int
	Window      time.Duration
}

// LoginRateLimit returns middleware that throttles credential endpoints
// per source IP. Throttling happens before any hashing or database work.
// Redis failures fail open: a broken cache must not lock everyone out.
func LoginRateLimit(cfg LoginRateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)

			result, err := cfg.Cache.CheckLoginAttempt(r.Context(), ip, cfg.MaxAttempts, cfg.Window)
			if err != nil {
				cfg.Logger.Error("login throttle check failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				cfg.Logger.Warn("login throttled",
					slog.String("ip", ip),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":"TOO_MANY_ATTEMPTS","message":"Too many attempts, try again later"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the client address without the port.
// chi's RealIP middleware has already resolved proxy headers upstream.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
