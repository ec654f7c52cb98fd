package utils

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GenerateID returns a new random UUID string.
func GenerateID() string {
	return uuid.NewString()
}

// GenerateAccountID generates a billing account id with the given prefix
func GenerateAccountID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidatePatientID reports whether id is a well-formed UUID.
func ValidatePatientID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
