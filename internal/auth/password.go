package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
)

// MinPasswordLength mirrors the client-side credential policy.
const MinPasswordLength = 6

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares password with hash. A mismatch is INVALID_CREDENTIALS.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return domain.ErrInvalidCredentials
	}
	return domain.WrapError(domain.ErrCodeInvalidCredentials, domain.ErrInvalidCredentials.Message, err)
}
