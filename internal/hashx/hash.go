// Package hashx implements the password digest the portal API expects on
// login and registration requests.
package hashx

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
)

// Password returns the transport digest of a plaintext password: the
// lowercase-hex SHA-256 of the lowercase-hex MD5 of the input. The server
// receives this digest instead of the plaintext and applies its own salted
// hashing on top; this is transport obfuscation, not secure storage.
//
// The function is deterministic and never fails for any string input.
func Password(plaintext string) string {
	first := md5.Sum([]byte(plaintext))
	second := sha256.Sum256([]byte(hex.EncodeToString(first[:])))
	return hex.EncodeToString(second[:])
}
