package config

import (
	"fmt"
	"os"
	"strings"
)

// minSecretLength is the shortest HS256 secret accepted.
const minSecretLength = 16

// JWTConfig holds configuration for token verification.
type JWTConfig struct {
	// Secret is the shared HS256 key. Empty disables signature verification.
	Secret string
}

// NewJWTConfig reads JWT_SECRET from the environment. The secret is optional.
func NewJWTConfig() (*JWTConfig, error) {
	config := &JWTConfig{
		Secret: strings.TrimSpace(os.Getenv("JWT_SECRET")),
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// Verifies reports whether token signatures are checked.
func (c *JWTConfig) Verifies() bool {
	return c != nil && c.Secret != ""
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret != "" && len(c.Secret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters, got: %d", minSecretLength, len(c.Secret))
	}
	return nil
}
