package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

const sha256HexLen = sha256.Size * 2

// SHA256Codec produces the lowercase hex SHA-256 of the UTF-8 plaintext.
// The digest is unsalted and deterministic.
type SHA256Codec struct{}

// Name implements Codec.
func (SHA256Codec) Name() string { return CodecSHA256 }

// Encode implements Codec. It never fails.
func (SHA256Codec) Encode(plaintext string) (string, error) {
	return sha256Hex(plaintext), nil
}

// Verify re-encodes plaintext and compares it to digest in constant time.
func (SHA256Codec) Verify(digest, plaintext string) (bool, error) {
	if !isSHA256Hex(digest) {
		return false, ErrInvalidDigest
	}
	return ctEqHex64(digest, sha256Hex(plaintext)), nil
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ctEqHex64 compares two 64-char hex strings in constant time.
// Inputs of any other length are rejected before comparing.
func ctEqHex64(a, b string) bool {
	if len(a) != sha256HexLen || len(b) != sha256HexLen {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isSHA256Hex(s string) bool {
	if len(s) != sha256HexLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
