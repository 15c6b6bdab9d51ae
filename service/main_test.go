// service/main_test.go
package service

import (
	"context"
	"database/sql"
	"go-auth-api/logger"
	"go-auth-api/model"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// TestMain runs setup before any tests in this package are executed.
func TestMain(m *testing.M) {
	logger.Init()
	exitCode := m.Run()
	os.Exit(exitCode)
}

// MockUserRepository is a mock for IUserRepository.
type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) CreateUser(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockTokenRepository is a mock for ITokenRepository.
type MockTokenRepository struct{ mock.Mock }

func (m *MockTokenRepository) Create(token *model.RefreshToken) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockTokenRepository) CreateTx(tx *sql.Tx, token *model.RefreshToken) error {
	args := m.Called(tx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetByTokenHash(tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}

func (m *MockTokenRepository) GetBySessionID(sessionID string) (*model.RefreshToken, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}

func (m *MockTokenRepository) GetByUserID(userID int) ([]*model.RefreshToken, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RefreshToken), args.Error(1)
}

func (m *MockTokenRepository) Consume(tx *sql.Tx, id int) (bool, error) {
	args := m.Called(tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) UpdateUsage(tx *sql.Tx, id int, ipAddress *string) error {
	args := m.Called(tx, id, ipAddress)
	return args.Error(0)
}

func (m *MockTokenRepository) Revoke(id int) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

// MockTokenService is a mock for ITokenService.
type MockTokenService struct{ mock.Mock }

func (m *MockTokenService) Issue(username string, deviceInfo, ipAddress *string) (*model.TokenPair, error) {
	args := m.Called(username, deviceInfo, ipAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenPair), args.Error(1)
}

func (m *MockTokenService) IssueTx(tx *sql.Tx, user *model.User, sessionID string, deviceInfo, ipAddress *string) (*model.TokenPair, error) {
	args := m.Called(tx, user, sessionID, deviceInfo, ipAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokenPair), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (*model.AccessClaims, bool) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*model.AccessClaims), args.Bool(1)
}

// mockCacheClient is a mock for ICacheClient.
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
