package handler

import (
	"encoding/json"
	"errors"
	"go-auth-api/common"
	"go-auth-api/service"
	"net/http"
)

// SessionHandler exposes the authenticated caller's session registry.
type SessionHandler struct {
	refreshService *service.RefreshService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(refreshService *service.RefreshService) *SessionHandler {
	return &SessionHandler{refreshService: refreshService}
}

// ListSessions godoc
// @Summary      List the caller's sessions
// @Description  Returns every session of the authenticated user, revoked ones included.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.SessionView
// @Failure      401  {object}  common.AppError
// @Failure      500  {object}  common.AppError
// @Router       /auth/sessions [get]
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	sessions, err := h.refreshService.ListSessions(r.Context(), userID)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not list sessions", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(sessions)
	return nil
}

// DeleteSession godoc
// @Summary      Revoke one session
// @Tags         sessions
// @Security     BearerAuth
// @Param        sessionId path string true "Session ID"
// @Success      204
// @Failure      401  {object}  common.AppError
// @Failure      403  {object}  common.AppError "Session belongs to another user"
// @Failure      404  {object}  common.AppError "Session not found"
// @Failure      500  {object}  common.AppError
// @Router       /auth/sessions/{sessionId} [delete]
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		return common.NewAppError(http.StatusBadRequest, "Missing session ID in URL path", nil)
	}

	if err := h.refreshService.RevokeSession(r.Context(), userID, sessionID); err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return common.NewAppError(http.StatusNotFound, err.Error(), err)
		case errors.Is(err, service.ErrSessionForbidden):
			return common.NewAppError(http.StatusForbidden, err.Error(), err)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not revoke session", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
