package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt cost bounds, re-exported so callers need not import bcrypt.
const (
	MinCost     = bcrypt.MinCost
	DefaultCost = bcrypt.DefaultCost
	MaxCost     = bcrypt.MaxCost
)

// Password length bounds. The minimum counts characters; the maximum counts
// bytes, since bcrypt refuses longer input.
const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72
)

// PasswordPolicy describes the password rules to clients.
const PasswordPolicy = "Password must be at least 6 characters long, and include uppercase, lowercase, number, and special character"

// PasswordTooLong describes the upper length bound to clients.
const PasswordTooLong = "Password must be at most 72 bytes long"

var (
	// ErrWeakPassword is returned when a password does not meet the policy.
	ErrWeakPassword = errors.New("password does not meet the policy")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// HashPassword hashes a password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength enforces the password policy: minimum length plus
// at least one upper-case letter, lower-case letter, digit and special character.
func ValidatePasswordStrength(password string) error {
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return ErrWeakPassword
	}
	return nil
}

// UnusablePassword returns a random secret nobody knows, for accounts that
// sign in through a federated provider only.
func UnusablePassword() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
