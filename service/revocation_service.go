// file: service/revocation_service.go

package service

import (
	"context"
	"go-auth-api/logger"
	"time"
)

const revokedKeyPrefix = "revoked:jti:"

// RevocationService records revoked access token IDs (jti) in the cache with
// a TTL matching the token's remaining lifetime. The cache is ephemeral state:
// losing it degrades revocation, never correctness of durable data, so every
// cache failure here is absorbed and logged instead of surfaced.
type RevocationService struct {
	cache ICacheClient
}

// NewRevocationService creates a new RevocationService.
func NewRevocationService(cache ICacheClient) *RevocationService {
	return &RevocationService{cache: cache}
}

// MarkRevoked stores a revocation mark for the given jti until the token's
// natural expiry. TTL is floored at one second so an almost-expired token
// still gets a mark. Cache failure is logged and swallowed; the caller's
// durable side effects must still complete.
func (s *RevocationService) MarkRevoked(ctx context.Context, jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}

	ttl := time.Until(expiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	if err := s.cache.Set(ctx, revokedKeyPrefix+jti, "revoked", ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("jti", jti).
			Error("Failed to store revocation mark; token remains valid until expiry")
	}
}

// IsRevoked reports whether a revocation mark exists for the jti.
// Fails open: an unreachable cache answers false, trading strict instantaneous
// revocation for availability. Access tokens are short-lived by design.
func (s *RevocationService) IsRevoked(ctx context.Context, jti string) bool {
	if jti == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	n, err := s.cache.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		logger.Log.WithError(err).WithField("jti", jti).
			Warn("Failed to check revocation mark; allowing token")
		return false
	}
	return n > 0
}

// RemoveRevocation deletes a revocation mark. Used by tests and manual cleanup.
func (s *RevocationService) RemoveRevocation(ctx context.Context, jti string) {
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	if err := s.cache.Del(ctx, revokedKeyPrefix+jti).Err(); err != nil {
		logger.Log.WithError(err).WithField("jti", jti).Warn("Failed to remove revocation mark")
	}
}
