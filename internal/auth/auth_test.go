package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	team := "team-1"
	token, exp, err := tm.GenerateToken("m-1", &team)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry %v is in the past", exp)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.RegisteredClaims.Subject != "m-1" || claims.TeamID == nil || *claims.TeamID != "team-1" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenRejectsOtherSecretAndExpiry(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	token, _, err := tm.GenerateToken("m-1", nil)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := NewTokenManager("other", time.Minute).ParseToken(token); err == nil {
		t.Fatal("expected signature error")
	}

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := tm.ParseToken(token); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err := ComparePassword(hash, "hunter22"); err != nil {
		t.Fatalf("ComparePassword() error = %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch")
	}
}

func TestPasswordHashRejectsShortPassword(t *testing.T) {
	if _, err := HashPassword("short", 4); err != ErrPasswordTooShort {
		t.Fatalf("HashPassword() error = %v, want ErrPasswordTooShort", err)
	}
}
