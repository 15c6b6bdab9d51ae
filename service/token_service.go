// file: service/token_service.go

package service

import (
	"database/sql"
	"errors"
	"fmt"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
	"go-auth-api/security"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrUserNotFound indicates the subject of a token operation does not resolve
// to an account. On the rotation path this is a consistency fault, not a
// client error.
var ErrUserNotFound = errors.New("user not found")

// ITokenService is the contract the auth and refresh services depend on.
type ITokenService interface {
	Issue(username string, deviceInfo, ipAddress *string) (*model.TokenPair, error)
	IssueTx(tx *sql.Tx, user *model.User, sessionID string, deviceInfo, ipAddress *string) (*model.TokenPair, error)
	Validate(tokenString string) (*model.AccessClaims, bool)
}

// TokenService mints RS256 access tokens and opaque refresh secrets, and
// verifies presented access tokens against the public key. The key pair is
// injected once at startup and never changes.
type TokenService struct {
	keys       *security.KeyPair
	userRepo   repository.IUserRepository
	tokenRepo  repository.ITokenRepository
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a new TokenService. TTLs are in milliseconds, as
// configured and as reported to clients.
func NewTokenService(keys *security.KeyPair, userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository, issuer string, accessTTLMs, refreshTTLMs int64) *TokenService {
	return &TokenService{
		keys:       keys,
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		issuer:     issuer,
		accessTTL:  time.Duration(accessTTLMs) * time.Millisecond,
		refreshTTL: time.Duration(refreshTTLMs) * time.Millisecond,
	}
}

// Issue mints an access/refresh pair for the subject under a brand new
// session. Performs one durable write: the refresh token insert.
func (s *TokenService) Issue(username string, deviceInfo, ipAddress *string) (*model.TokenPair, error) {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve user %q: %w", username, err)
	}
	return s.issue(nil, user, uuid.NewString(), deviceInfo, ipAddress)
}

// IssueTx mints a pair inside the caller's transaction, preserving the given
// session identifier. Used by the rotation engine so the consumed record and
// its replacement commit together.
func (s *TokenService) IssueTx(tx *sql.Tx, user *model.User, sessionID string, deviceInfo, ipAddress *string) (*model.TokenPair, error) {
	return s.issue(tx, user, sessionID, deviceInfo, ipAddress)
}

func (s *TokenService) issue(tx *sql.Tx, user *model.User, sessionID string, deviceInfo, ipAddress *string) (*model.TokenPair, error) {
	now := time.Now()
	jti := uuid.NewString()

	claims := &model.AccessClaims{
		UserID:    user.ID,
		Role:      string(user.Role),
		TokenType: model.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.keys.KeyID
	accessToken, err := token.SignedString(s.keys.Private)
	if err != nil {
		logger.Log.WithError(err).WithField("username", user.Username).Error("Failed to sign access token")
		return nil, fmt.Errorf("failed to sign token string: %w", err)
	}

	refreshSecret := uuid.NewString()
	record := &model.RefreshToken{
		UserID:     user.ID,
		TokenHash:  security.SHA256Hex(refreshSecret),
		SessionID:  sessionID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.refreshTTL),
		LastUsedAt: now,
		DeviceInfo: deviceInfo,
		IPAddress:  ipAddress,
	}

	if tx != nil {
		err = s.tokenRepo.CreateTx(tx, record)
	} else {
		err = s.tokenRepo.Create(record)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"jti":        jti,
		"session_id": sessionID,
	}).Info("Issued token pair")

	return &model.TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshSecret,
		AccessTokenExpiresIn:  s.accessTTL.Milliseconds(),
		RefreshTokenExpiresIn: s.refreshTTL.Milliseconds(),
	}, nil
}

// Validate verifies the signature and expiry of a presented access token.
// Any failure, malformed input included, answers (nil, false); validation
// never errors out past this boundary. Revocation is the caller's concern.
func (s *TokenService) Validate(tokenString string) (*model.AccessClaims, bool) {
	claims := &model.AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.keys.Public, nil
	}, jwt.WithValidMethods([]string{"RS256"}))

	if err != nil || !token.Valid {
		return nil, false
	}
	if claims.TokenType != model.TokenTypeAccess {
		return nil, false
	}
	return claims, true
}
