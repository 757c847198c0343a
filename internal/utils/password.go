package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong is returned for account passwords longer than the
// 72 bytes bcrypt reads.
var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

// HashPassword hashes an account password for the users table.  cost is
// BCRYPT_SALT_ROUND, raised to bcrypt.MinCost when set lower.
func HashPassword(plain string, cost int) (string, error) {
	if len(plain) > 72 {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), max(cost, bcrypt.MinCost))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash.  Accounts
// without a hash never match.
func VerifyPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
