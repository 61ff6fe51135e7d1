package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"doughjo/internal/domain/session"
	"doughjo/internal/shared/middleware"
)

func newTestSessionManager(t *testing.T) (*session.Manager, string) {
	t.Helper()

	mgr := session.NewManager(session.Config{
		MaxInactivity:     time.Minute,
		Warning:           10 * time.Second,
		MaxSession:        time.Hour,
		MaxExtensions:     3,
		SlotCheckInterval: time.Minute,
	}, session.NewMemorySlotStore(), nil)
	t.Cleanup(mgr.DisposeAll)

	monitor, err := mgr.Start(context.Background(), 1)
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	return mgr, monitor.ID()
}

func sessionRequest(method, target, sessionID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, int64(1))
	ctx = context.WithValue(ctx, middleware.SessionIDKey, sessionID)
	return req.WithContext(ctx)
}

func TestHandleStatus(t *testing.T) {
	mgr, sessionID := newTestSessionManager(t)
	handler := NewSessionHandler(mgr)

	req := sessionRequest(http.MethodGet, "/api/session/status", sessionID)
	rr := httptest.NewRecorder()
	handler.HandleStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp SessionStatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.State != "active" {
		t.Errorf("State = %q, want active", resp.State)
	}
	if resp.InactivitySecondsRemaining <= 0 || resp.InactivitySecondsRemaining > 60 {
		t.Errorf("InactivitySecondsRemaining = %d, want within (0, 60]", resp.InactivitySecondsRemaining)
	}
	if resp.ExtensionsLeft != 3 {
		t.Errorf("ExtensionsLeft = %d, want 3", resp.ExtensionsLeft)
	}
}

func TestHandleStatus_UnknownSession(t *testing.T) {
	mgr, _ := newTestSessionManager(t)
	handler := NewSessionHandler(mgr)

	req := sessionRequest(http.MethodGet, "/api/session/status", "no-such-session")
	rr := httptest.NewRecorder()
	handler.HandleStatus(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestHandleExtend_ConsumesExtension(t *testing.T) {
	mgr, sessionID := newTestSessionManager(t)
	handler := NewSessionHandler(mgr)

	req := sessionRequest(http.MethodPost, "/api/session/extend", sessionID)
	rr := httptest.NewRecorder()
	handler.HandleExtend(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp SessionStatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ExtensionsLeft != 2 {
		t.Errorf("ExtensionsLeft = %d, want 2 after one extension", resp.ExtensionsLeft)
	}
}

func TestHandleExtend_ExpiredSessionRejected(t *testing.T) {
	mgr, sessionID := newTestSessionManager(t)
	handler := NewSessionHandler(mgr)

	if err := mgr.SignOut(sessionID); err != nil {
		t.Fatalf("failed to sign out: %v", err)
	}

	req := sessionRequest(http.MethodPost, "/api/session/extend", sessionID)
	rr := httptest.NewRecorder()
	handler.HandleExtend(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
