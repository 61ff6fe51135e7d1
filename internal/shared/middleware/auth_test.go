package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"doughjo/internal/domain/session"
	"doughjo/internal/shared/auth"
)

func newTestSessions(t *testing.T) (*session.Manager, string) {
	t.Helper()

	mgr := session.NewManager(session.Config{
		MaxInactivity:     time.Minute,
		MaxSession:        time.Hour,
		SlotCheckInterval: time.Minute,
	}, session.NewMemorySlotStore(), nil)
	t.Cleanup(mgr.DisposeAll)

	monitor, err := mgr.Start(context.Background(), 1)
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	return mgr, monitor.ID()
}

func TestAuth(t *testing.T) {
	jwtService := auth.NewJWT("test-secret", 24*time.Hour)
	sessions, sessionID := newTestSessions(t)
	validToken, _ := jwtService.Generate(1, "test@example.com", sessionID)
	orphanToken, _ := jwtService.Generate(1, "test@example.com", "no-such-session")

	tests := []struct {
		name           string
		setupRequest   func(r *http.Request)
		expectedStatus int
		expectedUser   bool
	}{
		{
			name: "Valid Token in Cookie",
			setupRequest: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "access_token", Value: validToken})
			},
			expectedStatus: http.StatusOK,
			expectedUser:   true,
		},
		{
			name: "Valid Token in Header",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+validToken)
			},
			expectedStatus: http.StatusOK,
			expectedUser:   true,
		},
		{
			name:           "No Token",
			setupRequest:   func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
			expectedUser:   false,
		},
		{
			name: "Invalid Token",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer invalid")
			},
			expectedStatus: http.StatusUnauthorized,
			expectedUser:   false,
		},
		{
			name: "Valid JWT Without Live Session",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+orphanToken)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedUser:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				userID, ok := r.Context().Value(UserIDKey).(int64)
				if !ok && tt.expectedUser {
					t.Error("Expected user ID in context, got none")
				}
				if ok && !tt.expectedUser {
					t.Error("Unexpected user ID in context")
				}
				if ok && userID != 1 {
					t.Errorf("Expected user ID 1, got %d", userID)
				}
				w.WriteHeader(http.StatusOK)
			})

			handler := Auth(jwtService, sessions)(nextHandler)

			req := httptest.NewRequest("GET", "/", nil)
			tt.setupRequest(req)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestAuth_ExpiredSessionRejected(t *testing.T) {
	jwtService := auth.NewJWT("test-secret", 24*time.Hour)
	sessions, sessionID := newTestSessions(t)
	token, _ := jwtService.Generate(1, "test@example.com", sessionID)

	if err := sessions.SignOut(sessionID); err != nil {
		t.Fatalf("failed to sign out: %v", err)
	}

	handler := Auth(jwtService, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run after session expiry")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthPassive_DoesNotCountAsActivity(t *testing.T) {
	jwtService := auth.NewJWT("test-secret", 24*time.Hour)
	sessions, sessionID := newTestSessions(t)
	token, _ := jwtService.Generate(1, "test@example.com", sessionID)

	before, err := sessions.Status(sessionID)
	if err != nil {
		t.Fatalf("failed to read status: %v", err)
	}

	handler := AuthPassive(jwtService, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/session/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	after, err := sessions.Status(sessionID)
	if err != nil {
		t.Fatalf("failed to read status: %v", err)
	}
	if after.InactivityRemaining > before.InactivityRemaining {
		t.Error("passive auth reset the inactivity clock")
	}
}
