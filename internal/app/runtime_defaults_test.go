package app

import (
	"strings"
	"testing"
)

func TestApplyRuntimeDefaultsGeneratesMissingSecret(t *testing.T) {
	cfg := &Config{}

	generated, err := ApplyRuntimeDefaults(cfg)
	if err != nil {
		t.Fatalf("ApplyRuntimeDefaults returned error: %v", err)
	}

	if cfg.Auth.JWT.Secret == "" {
		t.Fatal("expected JWT secret to be generated")
	}
	if !generated["auth.jwt.secret"] {
		t.Fatalf("expected generated map to include jwt secret: %#v", generated)
	}
	if cfg.Leaderboard.Size != 100 {
		t.Fatalf("expected leaderboard size fallback of 100, got %d", cfg.Leaderboard.Size)
	}
}

func TestApplyRuntimeDefaultsPreservesExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.JWT.Secret = strings.Repeat("a", 10)
	cfg.Leaderboard.Size = 25

	generated, err := ApplyRuntimeDefaults(cfg)
	if err != nil {
		t.Fatalf("ApplyRuntimeDefaults returned error: %v", err)
	}

	if len(generated) != 0 {
		t.Fatalf("expected no generated values, got %#v", generated)
	}
	if cfg.Auth.JWT.Secret != strings.Repeat("a", 10) {
		t.Fatalf("secret was overwritten: %q", cfg.Auth.JWT.Secret)
	}
	if cfg.Leaderboard.Size != 25 {
		t.Fatalf("leaderboard size was overwritten: %d", cfg.Leaderboard.Size)
	}
}

func TestApplyRuntimeDefaultsNilConfig(t *testing.T) {
	if _, err := ApplyRuntimeDefaults(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
