package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordCost is the lowest bcrypt work factor the server will hash with.
const MinPasswordCost = 10

// HashPassword returns a salted bcrypt digest of password. Costs below
// MinPasswordCost are raised to it.
func HashPassword(password string, cost int) (string, error) {
	if cost < MinPasswordCost {
		cost = MinPasswordCost
	}
	if cost > bcrypt.MaxCost {
		return "", errors.New("bcrypt cost too high")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether password matches digest. Any failure,
// including a malformed digest, is reported as a mismatch.
func VerifyPassword(digest, password string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
