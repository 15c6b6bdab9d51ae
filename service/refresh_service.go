// file: service/refresh_service.go

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
	"go-auth-api/security"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidToken covers unknown, already-rotated, revoked and expired
	// refresh secrets. Callers must not be able to tell these apart.
	ErrInvalidToken     = errors.New("invalid refresh token")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionForbidden = errors.New("cannot modify another user's session")
)

// RefreshService owns the refresh-token lifecycle after issuance: rotation,
// explicit revocation, and the session registry.
type RefreshService struct {
	db         *sql.DB
	tokenRepo  repository.ITokenRepository
	userRepo   repository.IUserRepository
	tokens     ITokenService
	limiter    *RateLimiterService
	revocation *RevocationService
}

// NewRefreshService creates a new RefreshService.
func NewRefreshService(db *sql.DB, tokenRepo repository.ITokenRepository, userRepo repository.IUserRepository, tokens ITokenService, limiter *RateLimiterService, revocation *RevocationService) *RefreshService {
	return &RefreshService{
		db:         db,
		tokenRepo:  tokenRepo,
		userRepo:   userRepo,
		tokens:     tokens,
		limiter:    limiter,
		revocation: revocation,
	}
}

// Rotate consumes a refresh secret exactly once and returns a fresh pair for
// the same subject and session. The consumed record's revoked flag is the
// single source of truth: the conditional update inside the transaction
// guarantees that of two concurrent rotations one succeeds and the other is
// rejected.
func (s *RefreshService) Rotate(ctx context.Context, refreshSecret string, ipAddress *string) (*model.TokenPair, error) {
	record, err := s.tokenRepo.GetByTokenHash(security.SHA256Hex(refreshSecret))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	if record.Revoked {
		return nil, ErrInvalidToken
	}
	if !record.ExpiresAt.After(time.Now()) {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByID(record.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			// A live refresh token pointing at no account is a consistency
			// fault, not a client error.
			logger.Log.WithField("user_id", record.UserID).Error("Refresh token references missing user")
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve token owner: %w", err)
	}

	if !s.limiter.Allow(ctx, PurposeRefresh, user.Username, originKey(ipAddress)) {
		return nil, ErrRateLimited
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	consumed, err := s.tokenRepo.Consume(tx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	if !consumed {
		// Lost the race against a concurrent rotation or revoke.
		return nil, ErrInvalidToken
	}

	if err := s.tokenRepo.UpdateUsage(tx, record.ID, ipAddress); err != nil {
		return nil, fmt.Errorf("failed to update refresh token usage: %w", err)
	}

	pair, err := s.tokens.IssueTx(tx, user, record.SessionID, record.DeviceInfo, ipAddress)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit rotation: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"session_id": record.SessionID,
	}).Info("Rotated refresh token")

	return pair, nil
}

// Revoke invalidates whichever tokens the caller supplied, best-effort.
// A valid access token gets a revocation mark in the cache; a known refresh
// secret gets its record revoked durably. Cache failure never fails the
// request, and nothing reveals whether the supplied tokens existed.
func (s *RefreshService) Revoke(ctx context.Context, accessToken, refreshSecret string, ipAddress *string) error {
	var username string

	if accessToken != "" {
		if claims, ok := s.tokens.Validate(accessToken); ok {
			username = claims.Subject
			if claims.ID != "" && claims.ExpiresAt != nil {
				s.revocation.MarkRevoked(ctx, claims.ID, claims.ExpiresAt.Time)
			}
		}
	}

	if refreshSecret != "" {
		record, err := s.tokenRepo.GetByTokenHash(security.SHA256Hex(refreshSecret))
		switch {
		case err == sql.ErrNoRows:
			// Unknown secret; nothing to do and nothing to reveal.
		case err != nil:
			return fmt.Errorf("failed to look up refresh token: %w", err)
		default:
			if _, err := s.tokenRepo.Revoke(record.ID); err != nil {
				return fmt.Errorf("failed to revoke refresh token: %w", err)
			}
			if username == "" {
				if user, err := s.userRepo.GetUserByID(record.UserID); err == nil {
					username = user.Username
				}
			}
		}
	}

	if username != "" && !s.limiter.Allow(ctx, PurposeRevoke, username, originKey(ipAddress)) {
		return ErrRateLimited
	}
	return nil
}

// ListSessions returns every session of the subject, revoked ones included.
func (s *RefreshService) ListSessions(ctx context.Context, userID int) ([]*model.SessionView, error) {
	tokens, err := s.tokenRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*model.SessionView, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, &model.SessionView{
			SessionID:  t.SessionID,
			IssuedAt:   t.IssuedAt,
			LastUsedAt: t.LastUsedAt,
			ExpiresAt:  t.ExpiresAt,
			DeviceInfo: t.DeviceInfo,
			IPAddress:  t.IPAddress,
			Revoked:    t.Revoked,
		})
	}
	return sessions, nil
}

// RevokeSession revokes one session by id after verifying ownership.
func (s *RefreshService) RevokeSession(ctx context.Context, userID int, sessionID string) error {
	record, err := s.tokenRepo.GetBySessionID(sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to look up session: %w", err)
	}

	if record.UserID != userID {
		logger.Log.WithFields(logrus.Fields{
			"user_id":    userID,
			"session_id": sessionID,
		}).Warn("Cross-user session revocation attempt")
		return ErrSessionForbidden
	}

	if _, err := s.tokenRepo.Revoke(record.ID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func originKey(ipAddress *string) string {
	if ipAddress == nil || *ipAddress == "" {
		return "unknown"
	}
	return *ipAddress
}
