package model

import "github.com/golang-jwt/jwt/v5"

// TokenTypeAccess marks claims minted for API access, as opposed to any
// other token kind a future claim set might carry.
const TokenTypeAccess = "access"

// AccessClaims is the signed claim set of an access token. The jti lives in
// RegisteredClaims.ID and is the handle revocation targets.
type AccessClaims struct {
	UserID    int    `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}
