package cryptox

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted plaintext password length.
const MinPasswordLength = 8

// ErrPasswordTooShort is returned by HashPassword for passwords below MinPasswordLength.
var ErrPasswordTooShort = errors.New("password must be at least 8 characters long")

// HashPassword derives a salted bcrypt digest from the plaintext password.
// The digest is self-describing (algorithm, cost and salt are embedded).
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether password matches the stored bcrypt digest.
// It returns false for empty or malformed inputs and never returns an error
// to the caller; mismatch and malformed digests are indistinguishable.
func VerifyPassword(password, digest string) bool {
	if password == "" || digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
