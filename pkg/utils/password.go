package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a secret with bcrypt. Used for admin passwords and
// for login codes at rest (code plaintext is never persisted).
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPasswordHash compares a plaintext secret against its bcrypt hash.
func CheckPasswordHash(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
