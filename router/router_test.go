// file: router/router_test.go

package router_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"go-auth-api/handler"
	"go-auth-api/logger"
	"go-auth-api/router"
	"go-auth-api/security"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// newTestRouter wires only the public, dependency-free routes. Auth and
// session handlers stay nil; their routes are not exercised here.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("could not generate test key: %v", err)
	}
	keys := &security.KeyPair{Private: key, Public: &key.PublicKey, KeyID: "router-test-key"}

	return router.NewRouter(nil, nil, handler.NewJWKSHandler(keys), nil)
}

func TestHealthCheck_Routing(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	expectedBody := `{"status":"API is healthy and running"}`
	assert.JSONEq(t, expectedBody, rr.Body.String())
}

func TestPing_Routing(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/auth/ping", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "auth-service up", rr.Body.String())
}

func TestJWKS_Routing(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/oauth2/jwks", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body struct {
		Keys []map[string]string `json:"keys"`
	}
	err := json.Unmarshal(rr.Body.Bytes(), &body)
	assert.NoError(t, err)
	assert.Len(t, body.Keys, 1)

	jwk := body.Keys[0]
	assert.Equal(t, "RSA", jwk["kty"])
	assert.Equal(t, "sig", jwk["use"])
	assert.Equal(t, "RS256", jwk["alg"])
	assert.Equal(t, "router-test-key", jwk["kid"])
	assert.NotEmpty(t, jwk["n"])
	assert.Equal(t, "AQAB", jwk["e"])

	// Only public material may appear.
	assert.NotContains(t, jwk, "d")
	assert.NotContains(t, jwk, "p")
	assert.NotContains(t, jwk, "q")
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/nope", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
