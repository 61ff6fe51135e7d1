package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEnsureSecureCookie(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		want   []string
	}{
		{
			name:   "bare cookie gains all flags",
			cookie: "access_token=abc; Path=/",
			want:   []string{"Secure", "HttpOnly", "SameSite=Strict"},
		},
		{
			name:   "existing flags not duplicated",
			cookie: "access_token=abc; Path=/; Secure; HttpOnly; SameSite=Lax",
			want:   []string{"Secure", "HttpOnly", "SameSite=Lax"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ensureSecureCookie(tt.cookie)
			for _, attr := range tt.want {
				if !strings.Contains(got, attr) {
					t.Errorf("ensureSecureCookie(%q) = %q, missing %q", tt.cookie, got, attr)
				}
			}
			if strings.Count(got, "SameSite") != 1 {
				t.Errorf("ensureSecureCookie(%q) duplicated SameSite: %q", tt.cookie, got)
			}
		})
	}
}

func TestSecureCookies(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "abc", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})

	handler := SecureCookies(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	cookie := rr.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "Secure") || !strings.Contains(cookie, "HttpOnly") {
		t.Errorf("cookie missing secure flags: %q", cookie)
	}
}

func TestHSTS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := HSTS(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Strict-Transport-Security"); got == "" {
		t.Error("missing Strict-Transport-Security header")
	}
}
