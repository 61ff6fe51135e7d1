package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"doughjo/internal/domain/session"
	"doughjo/internal/shared/middleware"
)

type SessionHandler struct {
	sessions *session.Manager
}

func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// SessionStatusResponse reports remaining time in whole seconds so clients
// can drive their countdown UI without duration parsing.
type SessionStatusResponse struct {
	State                      string `json:"state"`
	InactivitySecondsRemaining int    `json:"inactivitySecondsRemaining"`
	SessionSecondsRemaining    int    `json:"sessionSecondsRemaining"`
	ExtensionsLeft             int    `json:"extensionsLeft"`
}

func toStatusResponse(st session.Status) SessionStatusResponse {
	return SessionStatusResponse{
		State:                      st.State,
		InactivitySecondsRemaining: int(st.InactivityRemaining.Seconds()),
		SessionSecondsRemaining:    int(st.SessionRemaining.Seconds()),
		ExtensionsLeft:             st.ExtensionsLeft,
	}
}

// HandleStatus returns the session countdown snapshot. The route is mounted
// behind the passive auth middleware so polling does not count as activity.
func (h *SessionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := r.Context().Value(middleware.SessionIDKey).(string)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	st, err := h.sessions.Status(sessionID)
	if err != nil {
		http.Error(w, "Session expired", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toStatusResponse(st))
}

// HandleExtend applies the user's explicit "keep me signed in" choice.
func (h *SessionHandler) HandleExtend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := r.Context().Value(middleware.SessionIDKey).(string)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.sessions.Extend(sessionID); err != nil {
		if errors.Is(err, session.ErrSessionExpired) || errors.Is(err, session.ErrSessionNotFound) {
			http.Error(w, "Session expired", http.StatusUnauthorized)
			return
		}
		log.Printf("Error extending session %s: %v", sessionID, err)
		http.Error(w, "Failed to extend session", http.StatusInternalServerError)
		return
	}

	st, err := h.sessions.Status(sessionID)
	if err != nil {
		http.Error(w, "Session expired", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toStatusResponse(st))
}
