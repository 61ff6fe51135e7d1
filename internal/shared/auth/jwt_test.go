package auth

import (
	"testing"
	"time"
)

func TestJWT_GenerateAndValidate(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	token, err := j.Generate(42, "kai@dojo.dev", "sess-abc")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	claims, err := j.Validate(token)
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "kai@dojo.dev" {
		t.Errorf("Email = %q, want %q", claims.Email, "kai@dojo.dev")
	}
	if claims.SessionID != "sess-abc" {
		t.Errorf("SessionID = %q, want %q", claims.SessionID, "sess-abc")
	}
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	j1 := NewJWT("secret-one", time.Hour)
	j2 := NewJWT("secret-two", time.Hour)

	token, err := j1.Generate(1, "a@b.c", "s1")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if _, err := j2.Validate(token); err == nil {
		t.Error("Validate() accepted token signed with a different secret")
	}
}

func TestJWT_RejectsExpired(t *testing.T) {
	j := NewJWT("test-secret", -time.Minute)

	token, err := j.Generate(1, "a@b.c", "s1")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if _, err := j.Validate(token); err == nil {
		t.Error("Validate() accepted an expired token")
	}
}

func TestJWT_RejectsGarbage(t *testing.T) {
	j := NewJWT("test-secret", time.Hour)

	if _, err := j.Validate("not.a.token"); err == nil {
		t.Error("Validate() accepted malformed token")
	}
}
