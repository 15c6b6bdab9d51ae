// file: service/ratelimit_service.go

package service

import (
	"context"
	"errors"
	"go-auth-api/logger"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrRateLimited is returned when an authentication endpoint exceeds its
// fixed-window ceiling. Handlers map it to 429.
var ErrRateLimited = errors.New("rate limit exceeded")

const rateLimitKeyPrefix = "ratelimit:"

// Purpose scopes a rate-limit counter to an endpoint class.
type Purpose string

const (
	PurposeLogin   Purpose = "login"
	PurposeRefresh Purpose = "refresh"
	PurposeRevoke  Purpose = "revoke"
)

// RateLimitConfig carries the per-purpose ceilings and window sizes.
// Revoke shares the refresh limits.
type RateLimitConfig struct {
	LoginMaxRequests   int64
	LoginWindow        time.Duration
	RefreshMaxRequests int64
	RefreshWindow      time.Duration
}

// RateLimiterService gates login, refresh and revoke attempts with
// fixed-window counters per subject and per network origin. The counters are
// advisory: a cache outage must never amplify into an auth outage, so every
// failure path allows the request.
type RateLimiterService struct {
	cache ICacheClient
	cfg   RateLimitConfig
}

// NewRateLimiterService creates a new RateLimiterService.
func NewRateLimiterService(cache ICacheClient, cfg RateLimitConfig) *RateLimiterService {
	return &RateLimiterService{cache: cache, cfg: cfg}
}

// Allow increments the subject-scoped and origin-scoped counters for the
// purpose and reports whether both are within the ceiling. Both counters are
// incremented even when the request ends up disallowed; the limiter is not a
// hard quota ledger.
func (s *RateLimiterService) Allow(ctx context.Context, purpose Purpose, subjectKey, originKey string) bool {
	max, window := s.limits(purpose)

	subjectCount := s.incrementAndGet(ctx, rateLimitKeyPrefix+string(purpose)+":user:"+subjectKey, window)
	originCount := s.incrementAndGet(ctx, rateLimitKeyPrefix+string(purpose)+":ip:"+originKey, window)

	allowed := subjectCount <= max && originCount <= max
	if !allowed {
		logger.Log.WithFields(logrus.Fields{
			"purpose": purpose,
			"subject": subjectKey,
			"origin":  originKey,
		}).Warn("Rate limit exceeded")
	}
	return allowed
}

func (s *RateLimiterService) limits(purpose Purpose) (int64, time.Duration) {
	if purpose == PurposeLogin {
		return s.cfg.LoginMaxRequests, s.cfg.LoginWindow
	}
	return s.cfg.RefreshMaxRequests, s.cfg.RefreshWindow
}

// incrementAndGet bumps the counter and returns the new count. The TTL is set
// only when the counter is created, giving a fixed (not sliding) window.
// Returns 0 on cache failure so the request is allowed.
func (s *RateLimiterService) incrementAndGet(ctx context.Context, key string, window time.Duration) int64 {
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	count, err := s.cache.Incr(ctx, key).Result()
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).
			Error("Failed to increment rate limit counter; allowing request")
		return 0
	}
	if count == 1 {
		if err := s.cache.Expire(ctx, key, window).Err(); err != nil {
			logger.Log.WithError(err).WithField("key", key).Warn("Failed to set rate limit window")
		}
	}
	return count
}
