package auth

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-at-least-16-chars"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return ts
}

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	if _, err := NewTokenService("short"); err == nil {
		t.Error("expected error for a short secret")
	}
}

func TestGenerateAndValidate(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(strings.Split(token, ".")) != 3 {
		t.Errorf("token %q is not a three-part JWT", token)
	}

	userID, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if userID != "user-123" {
		t.Errorf("Validate() userID = %q, want %q", userID, "user-123")
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration("user-123", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	if _, err := ts.Validate(token); err == nil {
		t.Error("expected error for an expired token")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts := newTestTokenService(t)
	other, err := NewTokenService("a-completely-different-secret")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	token, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := other.Validate(token); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, tokenStr := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := ts.Validate(tokenStr); err == nil {
			t.Errorf("Validate(%q) succeeded, want error", tokenStr)
		}
	}
}
