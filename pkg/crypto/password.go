package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost used for stored passwords
const DefaultCost = 12

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 8

var ErrWeakPassword = errors.New("password must be at least 8 characters and contain a letter and a digit")

var (
	bcryptCost  = DefaultCost
	randomBytes = rand.Read
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a password with a hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword enforces the registration password policy
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return ErrWeakPassword
	}
	return nil
}

// GenerateInvitationToken returns a URL-safe random token for registration links
func GenerateInvitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := randomBytes(buf); err != nil {
		return "", fmt.Errorf("failed to generate invitation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
