package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// loginLimitPrefix is the Redis key prefix for login-attempt counters.
const loginLimitPrefix = "loginlimit:ip:"

// LoginAttemptResult contains the result of a login throttle check.
type LoginAttemptResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// CheckLoginAttempt counts a login attempt for an IP in a fixed window and
// reports whether it is within budget. The counter key carries a hash of
// the IP, never the raw address.
func (c *Cache) CheckLoginAttempt(ctx context.Context, ip string, maxAttempts int, window time.Duration) (*LoginAttemptResult, error) {
	key := loginLimitPrefix + hashIP(ip)

	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count login attempt: %w", err)
	}

	// First attempt in the window starts the clock.
	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return nil, fmt.Errorf("failed to set login window: %w", err)
		}
	}

	if count > int64(maxAttempts) {
		ttl, err := c.client.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}
		return &LoginAttemptResult{Allowed: false, RetryAfter: ttl}, nil
	}

	return &LoginAttemptResult{
		Allowed:   true,
		Remaining: int64(maxAttempts) - count,
	}, nil
}

// hashIP creates a truncated SHA256 hash of an IP address.
// This provides privacy while maintaining uniqueness.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
