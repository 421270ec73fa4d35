// Package auth holds the pieces every surface shares: password hashing, the
// per-request Identity, the API token format, and the authorization rules.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash of password. bcrypt salts every call, so
// hashing the same password twice yields different strings.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. An empty or absent
// hash never matches.
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
