// handler/auth_middleware_test.go
package handler

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"go-auth-api/model"
	"go-auth-api/security"
	"go-auth-api/service"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mockCacheClient satisfies service.ICacheClient for revocation checks.
type mockCacheClient struct{ mock.Mock }

func (m *mockCacheClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *mockCacheClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *mockCacheClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

func (m *mockCacheClient) Incr(ctx context.Context, key string) *redis.IntCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.IntCmd)
}

func (m *mockCacheClient) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(ctx, key, expiration)
	return args.Get(0).(*redis.BoolCmd)
}

func (m *mockCacheClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

func newMiddlewareFixture(t *testing.T, revokedInCache bool) (*AuthMiddleware, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("could not generate test key: %v", err)
	}
	keys := &security.KeyPair{Private: key, Public: &key.PublicKey, KeyID: "test-key"}

	// Validate only touches the public key, so nil repositories are fine here.
	tokens := service.NewTokenService(keys, nil, nil, "auth-service", 300000, 1209600000)

	claims := &model.AccessClaims{
		UserID:    42,
		Role:      "user",
		TokenType: model.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "auth-service",
			Subject:   "alice",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
			ID:        "jti-test",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("could not sign test token: %v", err)
	}

	cache := new(mockCacheClient)
	var marked int64
	if revokedInCache {
		marked = 1
	}
	cache.On("Exists", mock.Anything, mock.Anything).Return(redis.NewIntResult(marked, nil))

	mw := NewAuthMiddleware(tokens, service.NewRevocationService(cache))
	return mw, signed
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	protected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := r.Context().Value(UserIDKey).(int)
		username, _ := r.Context().Value(UsernameKey).(string)
		assert.Equal(t, 42, userID)
		assert.Equal(t, "alice", username)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token passes with identity in context", func(t *testing.T) {
		mw, token := newMiddlewareFixture(t, false)

		req := httptest.NewRequest("GET", "/auth/sessions", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()

		mw.RequireAuth(protected).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		mw, _ := newMiddlewareFixture(t, false)

		req := httptest.NewRequest("GET", "/auth/sessions", nil)
		rr := httptest.NewRecorder()

		mw.RequireAuth(protected).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		mw, token := newMiddlewareFixture(t, false)

		req := httptest.NewRequest("GET", "/auth/sessions", nil)
		req.Header.Set("Authorization", "Token "+token)
		rr := httptest.NewRecorder()

		mw.RequireAuth(protected).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		mw, _ := newMiddlewareFixture(t, false)

		req := httptest.NewRequest("GET", "/auth/sessions", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rr := httptest.NewRecorder()

		mw.RequireAuth(protected).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("revoked token is rejected despite a valid signature", func(t *testing.T) {
		mw, token := newMiddlewareFixture(t, true)

		req := httptest.NewRequest("GET", "/auth/sessions", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()

		mw.RequireAuth(protected).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestClientIP(t *testing.T) {
	t.Run("X-Forwarded-For wins and takes the first hop", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		req.Header.Set("X-Real-IP", "198.51.100.2")
		assert.Equal(t, "203.0.113.7", ClientIP(req))
	})

	t.Run("X-Real-IP is the fallback", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Real-IP", "198.51.100.2")
		assert.Equal(t, "198.51.100.2", ClientIP(req))
	})

	t.Run("remote address is the last resort", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "192.0.2.1:56789"
		assert.Equal(t, "192.0.2.1", ClientIP(req))
	})
}

func TestDeviceInfo(t *testing.T) {
	t.Run("absent user agent is nil", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Del("User-Agent")
		assert.Nil(t, DeviceInfo(req))
	})

	t.Run("long user agent is truncated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		long := make([]byte, 600)
		for i := range long {
			long[i] = 'a'
		}
		req.Header.Set("User-Agent", string(long))

		info := DeviceInfo(req)
		assert.NotNil(t, info)
		assert.Len(t, *info, maxDeviceInfoLen)
	})
}
