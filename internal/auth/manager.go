package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/tillpos/internal/config"
)

var (
	// ErrOverrideDisabled is returned when no manager PIN hash is configured.
	ErrOverrideDisabled = errors.New("manager override is not configured")
	// ErrInvalidManagerKey is returned when the supplied key does not match.
	ErrInvalidManagerKey = errors.New("invalid manager key")
)

// ManagerAuthorizer checks manager override keys against a bcrypt hash.
type ManagerAuthorizer struct {
	hash []byte
}

// NewManagerAuthorizer reads the PIN hash from configuration.
func NewManagerAuthorizer(cfg config.Config) *ManagerAuthorizer {
	return &ManagerAuthorizer{hash: []byte(cfg.Auth.ManagerPINHash)}
}

// Authorize returns nil when key matches the configured PIN.
func (a *ManagerAuthorizer) Authorize(_ context.Context, key string) error {
	if len(a.hash) == 0 {
		return ErrOverrideDisabled
	}
	if key == "" {
		return ErrInvalidManagerKey
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(key)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidManagerKey
		}
		return err
	}
	return nil
}

// HashPIN produces the value to store in AUTH_MANAGER_PIN_HASH.
func HashPIN(pin string) (string, error) {
	if len(pin) < 4 {
		return "", errors.New("manager PIN must be at least 4 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
