// Package cryptox holds the one-way password digest used for stored records.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestHexLen is the length of every value returned by HashPassword.
const DigestHexLen = sha256.Size * 2

// HashPassword returns the SHA-256 digest of password as lowercase hex.
//
// The digest is unsalted, so identical passwords produce identical digests
// across records. Existing storage files depend on this exact format.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
