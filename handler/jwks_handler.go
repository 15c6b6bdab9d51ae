package handler

import (
	"encoding/json"
	"go-auth-api/security"
	"net/http"
)

// JWKSHandler publishes the public verification key. No private material
// ever leaves the process.
type JWKSHandler struct {
	keys *security.KeyPair
}

// NewJWKSHandler creates a new JWKSHandler.
func NewJWKSHandler(keys *security.KeyPair) *JWKSHandler {
	return &JWKSHandler{keys: keys}
}

// JWKS godoc
// @Summary      Publish the public key set
// @Tags         oauth2
// @Produce      json
// @Success      200  {object}  security.JWKSet
// @Router       /oauth2/jwks [get]
func (h *JWKSHandler) JWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(h.keys.JWKS())
}
