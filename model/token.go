// file: model/token.go

package model

import "time"

// RefreshToken holds the data for a refresh token in the database.
// Only the SHA-256 hash of the secret is stored; the plaintext value is
// returned to the client exactly once at issue time.
type RefreshToken struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	TokenHash  string    `json:"-"` // The hash is not exposed in JSON responses.
	SessionID  string    `json:"session_id"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	Revoked    bool      `json:"revoked"`
	DeviceInfo *string   `json:"device_info,omitempty"`
	IPAddress  *string   `json:"ip_address,omitempty"`
}

// TokenPair is what the issuer hands back: the signed access token, the
// plaintext refresh secret, and both lifetimes in milliseconds.
type TokenPair struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

// SessionView is the per-session projection returned by the session listing.
type SessionView struct {
	SessionID  string    `json:"session_id"`
	IssuedAt   time.Time `json:"issued_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	DeviceInfo *string   `json:"device_info,omitempty"`
	IPAddress  *string   `json:"ip_address,omitempty"`
	Revoked    bool      `json:"revoked"`
}
