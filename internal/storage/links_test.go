package storage

import (
	"errors"
	"testing"
	"time"
)

func TestLinkSignerRoundTrip(t *testing.T) {
	signer := NewLinkSigner("secret", time.Minute)
	token, expires, err := signer.Sign("w9/sub-1/file.pdf")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if !expires.After(time.Now()) {
		t.Fatalf("expires = %v, want in the future", expires)
	}
	if err := signer.Verify(token, "/w9/sub-1/./file.pdf"); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
}

func TestLinkSignerRejects(t *testing.T) {
	signer := NewLinkSigner("secret", time.Minute)
	token, _, err := signer.Sign("w9/sub-1/file.pdf")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if err := signer.Verify(token, "identity/sub-1/scan.png"); !errors.Is(err, ErrLinkInvalid) {
		t.Fatalf("other key: error = %v, want ErrLinkInvalid", err)
	}
	if err := signer.Verify("", "w9/sub-1/file.pdf"); !errors.Is(err, ErrLinkInvalid) {
		t.Fatalf("empty token: error = %v, want ErrLinkInvalid", err)
	}
	if err := NewLinkSigner("other", time.Minute).Verify(token, "w9/sub-1/file.pdf"); !errors.Is(err, ErrLinkInvalid) {
		t.Fatalf("other secret: error = %v, want ErrLinkInvalid", err)
	}

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if err := signer.Verify(token, "w9/sub-1/file.pdf"); !errors.Is(err, ErrLinkInvalid) {
		t.Fatalf("expired: error = %v, want ErrLinkInvalid", err)
	}
}
