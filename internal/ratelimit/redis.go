// Package ratelimit throttles clients by IP: a Redis fixed window shared by
// every instance for the auth routes, and an in-process token bucket for
// cheap read endpoints.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Purposes with their own counters.
const (
	PurposeRegister = "register"
	PurposeLogin    = "login"
)

// Policy is the number of requests allowed per window.
type Policy struct {
	Max    int64
	Window time.Duration
}

// DefaultPolicies apply when NewLimiter is given none.
var DefaultPolicies = map[string]Policy{
	PurposeRegister: {Max: 5, Window: time.Hour},
	PurposeLogin:    {Max: 10, Window: 15 * time.Minute},
}

var defaultPolicy = Policy{Max: 20, Window: time.Hour}

// Limiter counts requests per IP and purpose in Redis.
type Limiter struct {
	client   redis.Cmdable
	policies map[string]Policy
}

func NewLimiter(client redis.Cmdable) *Limiter {
	return NewLimiterWithPolicies(client, DefaultPolicies)
}

func NewLimiterWithPolicies(client redis.Cmdable, policies map[string]Policy) *Limiter {
	return &Limiter{client: client, policies: policies}
}

func ipKey(purpose, ip string) string {
	return fmt.Sprintf("ratelimit:%s:ip:%s", purpose, ip)
}

func (l *Limiter) policy(purpose string) Policy {
	if p, ok := l.policies[purpose]; ok {
		return p
	}
	return defaultPolicy
}

// CheckIPRateLimitWithPurpose reports whether ip has used up its window for
// purpose.
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, ipKey(purpose, ip)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}

	return count >= l.policy(purpose).Max, nil
}

// RecordIPRequestWithPurpose counts one request. The window starts with the
// first request and is not extended by later ones.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	key := ipKey(purpose, ip)

	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.policy(purpose).Window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record rate limit request: %w", err)
	}

	return nil
}
