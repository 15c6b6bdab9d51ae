// file: security/keys.go

package security

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
)

// KeyPair holds the service signing keys. It is constructed once at startup
// and shared read-only by all request workers; nothing mutates it afterwards.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
	KeyID   string
}

// JWK represents a single public key in JWKS form (base64url n/e, no padding).
type JWK struct {
	KTY string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	KID string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSet is the document served on the jwks endpoint.
type JWKSet struct {
	Keys []JWK `json:"keys"`
}

// LoadKeyPair reads PEM-encoded RSA keys from disk. The private key may be
// PKCS#8 or PKCS#1; the public key may be PKIX or PKCS#1.
func LoadKeyPair(privateKeyFile, publicKeyFile, keyID string) (*KeyPair, error) {
	privPEM, err := os.ReadFile(privateKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	pubPEM, err := os.ReadFile(publicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}

	priv, err := ParsePrivateKey(privPEM)
	if err != nil {
		return nil, err
	}
	pub, err := ParsePublicKey(pubPEM)
	if err != nil {
		return nil, err
	}

	return &KeyPair{Private: priv, Public: pub, KeyID: keyID}, nil
}

// ParsePrivateKey parses a PEM-encoded RSA private key.
func ParsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no PEM block found in private key data")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("unsupported private key type %T", parsed)
	}
	return key, nil
}

// ParsePublicKey parses a PEM-encoded RSA public key.
func ParsePublicKey(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no PEM block found in public key data")
	}

	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unsupported public key type %T", parsed)
	}
	return key, nil
}

// JWKS builds the public key set. Only public material is included.
func (kp *KeyPair) JWKS() JWKSet {
	return JWKSet{
		Keys: []JWK{
			{
				KTY: "RSA",
				Use: "sig",
				Alg: "RS256",
				KID: kp.KeyID,
				N:   base64.RawURLEncoding.EncodeToString(kp.Public.N.Bytes()),
				E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(kp.Public.E)).Bytes()),
			},
		},
	}
}
