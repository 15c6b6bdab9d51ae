// file: security/keys_test.go

package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTestKeyFiles(t *testing.T) (string, string, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("could not generate test key: %v", err)
	}

	dir := t.TempDir()

	privBytes, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("could not marshal private key: %v", err)
	}
	privPath := filepath.Join(dir, "private.pem")
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes})
	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		t.Fatalf("could not write private key file: %v", err)
	}

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("could not marshal public key: %v", err)
	}
	pubPath := filepath.Join(dir, "public.pem")
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil {
		t.Fatalf("could not write public key file: %v", err)
	}

	return privPath, pubPath, key
}

func TestLoadKeyPair(t *testing.T) {
	privPath, pubPath, key := writeTestKeyFiles(t)

	kp, err := LoadKeyPair(privPath, pubPath, "test-key-1")

	assert.NoError(t, err)
	assert.Equal(t, "test-key-1", kp.KeyID)
	assert.Equal(t, key.D, kp.Private.D)
	assert.Equal(t, key.PublicKey.N, kp.Public.N)
}

func TestLoadKeyPair_MissingFile(t *testing.T) {
	_, pubPath, _ := writeTestKeyFiles(t)

	_, err := LoadKeyPair("/nonexistent/private.pem", pubPath, "test-key-1")
	assert.Error(t, err)
}

func TestParsePrivateKey_PKCS1(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	parsed, err := ParsePrivateKey(pemBytes)
	assert.NoError(t, err)
	assert.Equal(t, key.D, parsed.D)
}

func TestParsePublicKey_Garbage(t *testing.T) {
	_, err := ParsePublicKey([]byte("not pem at all"))
	assert.Error(t, err)
}

func TestKeyPair_JWKS(t *testing.T) {
	privPath, pubPath, _ := writeTestKeyFiles(t)
	kp, err := LoadKeyPair(privPath, pubPath, "test-key-1")
	assert.NoError(t, err)

	jwks := kp.JWKS()

	assert.Len(t, jwks.Keys, 1)
	jwk := jwks.Keys[0]
	assert.Equal(t, "RSA", jwk.KTY)
	assert.Equal(t, "sig", jwk.Use)
	assert.Equal(t, "RS256", jwk.Alg)
	assert.Equal(t, "test-key-1", jwk.KID)
	assert.NotEmpty(t, jwk.N)
	assert.Equal(t, "AQAB", jwk.E) // standard exponent 65537
	// base64url, no padding
	assert.NotContains(t, jwk.N, "=")
	assert.NotContains(t, jwk.N, "+")
	assert.NotContains(t, jwk.N, "/")
}
