package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/onboarding-service/internal/auth"
	"github.com/spec-kit/onboarding-service/internal/config"
	"github.com/spec-kit/onboarding-service/internal/domain"
	"github.com/spec-kit/onboarding-service/internal/repository/memstore"
)

func TestLoginManager(t *testing.T) {
	ctx := context.Background()
	store, err := memstore.New()
	if err != nil {
		t.Fatalf("memstore.New() error = %v", err)
	}
	hash, err := auth.HashPassword("correct horse", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	team := "t1"
	_ = store.PutManager(domain.Manager{ID: "m1", TeamID: &team, Name: "Grace", Email: "grace@acme.test", PasswordHash: hash, IsActive: true})
	_ = store.PutManager(domain.Manager{ID: "m2", Name: "Gone", Email: "gone@acme.test", PasswordHash: hash})

	svc := NewAuthService(config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5}, AuthDependencies{ManagerRepo: store.Managers()})

	manager, token, _, err := svc.LoginManager(ctx, " GRACE@acme.test ", "correct horse")
	if err != nil {
		t.Fatalf("LoginManager() error = %v", err)
	}
	if manager.ID != "m1" {
		t.Fatalf("manager = %s", manager.ID)
	}
	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != domain.SubjectTypeManager || claims.RegisteredClaims.Subject != "m1" {
		t.Fatalf("claims = %+v", claims)
	}
	stored, _ := store.Managers().GetByID(ctx, "m1")
	if stored.LastActivityAt == nil {
		t.Fatal("login did not stamp activity")
	}

	for name, creds := range map[string][2]string{
		"wrong password": {"grace@acme.test", "nope"},
		"unknown email":  {"nobody@acme.test", "correct horse"},
		"inactive":       {"gone@acme.test", "correct horse"},
	} {
		if _, _, _, err := svc.LoginManager(ctx, creds[0], creds[1]); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s: error = %v, want ErrInvalidCredentials", name, err)
		}
	}
}
