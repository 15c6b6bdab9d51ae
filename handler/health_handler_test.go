// handler/health_handler_test.go
package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()

	HealthCheck(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	expectedBody := `{"status":"API is healthy and running"}`
	assert.JSONEq(t, expectedBody, rr.Body.String())
}

func TestPing(t *testing.T) {
	req, _ := http.NewRequest("GET", "/auth/ping", nil)
	rr := httptest.NewRecorder()

	Ping(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "auth-service up", rr.Body.String())
}
