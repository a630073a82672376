package main

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/homecare/homecare/internal/config"
)

func TestGeneratePassword(t *testing.T) {
	p1, err := generatePassword()
	if err != nil {
		t.Fatalf("generatePassword() error: %v", err)
	}
	if len(p1) != 24 {
		t.Errorf("expected 24 hex chars, got %d", len(p1))
	}
	if _, err := hex.DecodeString(p1); err != nil {
		t.Errorf("password is not hex: %v", err)
	}

	p2, err := generatePassword()
	if err != nil {
		t.Fatal(err)
	}
	if p1 == p2 {
		t.Error("expected distinct passwords")
	}
}

func TestTokenIssuer_FromConfig(t *testing.T) {
	cfg := &config.Config{
		JWTSigningKey: "dev-secret",
		AuthIssuer:    "homecare",
		AuthAudience:  "homecare-api",
		TokenTTLHours: 12,
	}
	issuer := tokenIssuer(cfg)

	token, err := issuer.Issue("account-1", "jane@example.com", []string{"patient"})
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if token == "" {
		t.Error("expected a signed token")
	}
}

func TestAuthMiddleware_Selection(t *testing.T) {
	logger := zerolog.Nop()

	// Development with no key configured falls back to the permissive identity.
	if mw := authMiddleware(&config.Config{Env: "development"}, logger); mw == nil {
		t.Fatal("expected middleware")
	}

	// A configured signing key always enables JWT validation.
	if mw := authMiddleware(&config.Config{Env: "production", JWTSigningKey: "key"}, logger); mw == nil {
		t.Fatal("expected middleware")
	}
}

func TestNewLoggerRespectsEnv(t *testing.T) {
	dev := newLogger(&config.Config{Env: "development"})
	prod := newLogger(&config.Config{Env: "production"})

	// Both must be usable without panicking.
	dev.Info().Time("at", time.Now()).Msg("dev logger")
	prod.Info().Time("at", time.Now()).Msg("prod logger")
}
