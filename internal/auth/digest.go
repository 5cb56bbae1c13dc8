// Package auth provides credential digesting and bearer token issuance for
// the admin console.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// passwordSalt is the fixed salt appended to passwords before digesting.
// This construction is known-weak and is retained only for compatibility
// with the existing admin_users credentials; a migration to a memory-hard
// KDF with per-row salts should replace it.
const passwordSalt = "cebu_tourist_salt"

// Digest returns the lowercase hex SHA-256 of password||salt. It is the
// only form in which credentials are ever stored or compared.
func Digest(password string) string {
	sum := sha256.Sum256([]byte(password + passwordSalt))
	return hex.EncodeToString(sum[:])
}

// Verify compares a candidate password against a stored digest in constant
// time.
func Verify(password, digestHex string) bool {
	candidate := Digest(password)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(digestHex)) == 1
}
