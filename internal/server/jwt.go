package server

import (
	"log"

	"github.com/jonathan/cvmaker/internal/auth"
	"github.com/jonathan/cvmaker/internal/config"
	"github.com/jonathan/cvmaker/internal/server/middleware"
)

// newTokenValidator builds the validator used by the auth middleware. Signatures
// are only checked when a secret is configured.
func newTokenValidator(cfg *config.JWTConfig) middleware.TokenValidator {
	if !cfg.Verifies() {
		log.Printf("[SERVER] JWT_SECRET not set, token signatures are not verified")
		return auth.NewDecoder("")
	}
	return auth.NewDecoder(cfg.Secret)
}
