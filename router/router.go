package router

import (
	"go-auth-api/handler"
	"net/http"
)

func NewRouter(authHandler *handler.AuthHandler, sessionHandler *handler.SessionHandler, jwksHandler *handler.JWKSHandler, authMW *handler.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.HandleFunc("GET /auth/ping", handler.Ping)

	mux.Handle("POST /auth/register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("POST /auth/revoke", handler.ErrorHandlingMiddleware(authHandler.Revoke))

	mux.Handle("GET /auth/sessions", authMW.RequireAuth(handler.ErrorHandlingMiddleware(sessionHandler.ListSessions)))
	mux.Handle("DELETE /auth/sessions/{sessionId}", authMW.RequireAuth(handler.ErrorHandlingMiddleware(sessionHandler.DeleteSession)))

	mux.HandleFunc("GET /oauth2/jwks", jwksHandler.JWKS)

	return mux
}
