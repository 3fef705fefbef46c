// Package auth provides password digest helpers.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt digest of the password. The cleartext is
// never stored; bcrypt embeds its own per-password salt in the digest.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored digest.
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
