package app

import (
	"fmt"
	"strings"

	"github.com/gamehaqqs/gamehaqqs/pkg/crypto"
)

const jwtSecretBytes = 48

// ApplyRuntimeDefaults fills secrets that were not configured. It returns the keys it generated
// so callers can log the event without exposing values. Generated JWT secrets do not survive a
// restart, so issued tokens become invalid.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	generated := make(map[string]bool)

	cfg.Auth.JWT.Secret = strings.TrimSpace(cfg.Auth.JWT.Secret)
	if cfg.Auth.JWT.Secret == "" {
		secret, err := crypto.GenerateToken(jwtSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.Auth.JWT.Secret = secret
		generated["auth.jwt.secret"] = true
	}

	if cfg.Leaderboard.Size <= 0 {
		cfg.Leaderboard.Size = 100
		generated["leaderboard.size"] = true
	}

	return generated, nil
}
