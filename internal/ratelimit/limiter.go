package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/askwhyharsh/arlocations/internal/config"
	"github.com/askwhyharsh/arlocations/internal/storage"
)

// RateLimiter defines the contract for enforcing rate limits. A limit of
// zero or less disables that check.
type RateLimiter interface {
	// AllowLocationUpdate checks if a session can push another location fix.
	AllowLocationUpdate(ctx context.Context, sessionID string) (bool, error)

	// AllowSessionCreation checks if an IP can create a new AR session.
	AllowSessionCreation(ctx context.Context, ip string) (bool, error)

	// AllowIPRequest checks if an IP can make a request.
	AllowIPRequest(ctx context.Context, ip string) (bool, error)

	// ResetLimits clears the per-session counters.
	ResetLimits(ctx context.Context, sessionID string) error
}

type Limiter struct {
	redis  storage.RedisClient
	config config.RateLimitConfig
	now    func() time.Time
}

func NewLimiter(redisClient storage.RedisClient, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
		now:    time.Now,
	}
}

// AllowLocationUpdate checks if a session can update location
func (l *Limiter) AllowLocationUpdate(ctx context.Context, sessionID string) (bool, error) {
	return l.checkSlidingWindow(ctx, locationKey(sessionID), l.config.LocationPerMin, time.Minute)
}

// AllowSessionCreation checks if an IP can create a new session
func (l *Limiter) AllowSessionCreation(ctx context.Context, ip string) (bool, error) {
	if l.config.SessionsPerIPPerHour <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("ratelimit:ip:%s:sessions", ip)

	count, err := l.redis.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check session creation rate limit: %w", err)
	}

	// Set expiration on first increment (1 hour)
	if count == 1 {
		if err := l.redis.Expire(ctx, key, time.Hour); err != nil {
			return false, fmt.Errorf("failed to set session limit expiry: %w", err)
		}
	}

	return count <= int64(l.config.SessionsPerIPPerHour), nil
}

// AllowIPRequest checks if an IP can make a request
func (l *Limiter) AllowIPRequest(ctx context.Context, ip string) (bool, error) {
	key := fmt.Sprintf("ratelimit:ip:%s:requests", ip)
	return l.checkSlidingWindow(ctx, key, l.config.RequestsPerMinute, time.Minute)
}

func (l *Limiter) ResetLimits(ctx context.Context, sessionID string) error {
	return l.redis.Del(ctx, locationKey(sessionID))
}

// checkSlidingWindow implements a sliding window rate limiter using sorted sets.
// Scores are unix milliseconds; every accepted call adds a unique member.
func (l *Limiter) checkSlidingWindow(ctx context.Context, key string, maxCount int, window time.Duration) (bool, error) {
	if maxCount <= 0 {
		return true, nil
	}

	now := l.now().UnixMilli()
	windowStart := now - window.Milliseconds()

	// Remove old entries outside the window
	if err := l.redis.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%d", windowStart)); err != nil {
		return false, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := l.redis.ZCard(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to count entries: %w", err)
	}

	if count >= int64(maxCount) {
		return false, nil
	}

	if err := l.redis.ZAdd(ctx, key, redis.Z{
		Score:  float64(now),
		Member: uuid.NewString(),
	}); err != nil {
		return false, fmt.Errorf("failed to add entry: %w", err)
	}

	if err := l.redis.Expire(ctx, key, window); err != nil {
		return false, fmt.Errorf("failed to set window expiry: %w", err)
	}

	return true, nil
}

func locationKey(sessionID string) string {
	return fmt.Sprintf("ratelimit:location:%s", sessionID)
}
