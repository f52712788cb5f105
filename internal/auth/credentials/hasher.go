package credentials

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	HashVersionBcrypt = "bcrypt"
)

var ErrEmptyPassword = errors.New("password is empty")

// HashPassword hashes a plaintext password using bcrypt. Strength rules are
// the client's concern; the service only refuses an empty password.
func HashPassword(password string, cost int) (hash string, version string, err error) {
	if password == "" {
		return "", "", ErrEmptyPassword
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", "", err
	}

	return string(bytes), HashVersionBcrypt, nil
}

// VerifyPassword compares plaintext password with stored hash.
func VerifyPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
