package service

import (
	"database/sql"
	"errors"
	"fmt"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers both unknown username and wrong password.
	// The two are indistinguishable to callers on purpose.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already exists")
)

// AuthService handles registration and credential-based login.
type AuthService struct {
	userRepo repository.IUserRepository
	tokens   ITokenService
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.IUserRepository, tokens ITokenService) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), err
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Register creates a new account with the default user role.
func (s *AuthService) Register(req model.RegisterRequest) (*model.User, error) {
	if _, err := s.userRepo.GetUserByUsername(req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check username availability: %w", err)
	}

	hashedPassword, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     model.RoleUser,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Log.WithField("user_id", user.ID).Info("Registered new user")
	user.Password = ""
	return user, nil
}

// Login verifies credentials and issues a token pair for a new session.
func (s *AuthService) Login(req model.LoginRequest, deviceInfo, ipAddress *string) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetUserByUsername(req.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user.Username, deviceInfo, ipAddress)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:                 pair.AccessToken, // backward compatibility
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresIn:  pair.AccessTokenExpiresIn,
		RefreshTokenExpiresIn: pair.RefreshTokenExpiresIn,
	}, nil
}
