package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for stored passwords.
const PasswordCost = 10

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns a salted hash of password. Each call uses a fresh salt.
	Hash(password string) (string, error)
	// Verify reports whether password produced hash.
	Verify(hash, password string) bool
}

// BcryptHasher is a PasswordHasher using bcrypt. The salt is embedded in
// the hash output.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher with the given cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
