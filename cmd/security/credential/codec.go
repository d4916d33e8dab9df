package credential

import (
	"fmt"
	"strings"
)

// Codec names accepted by New.
const (
	CodecSHA256   = "sha256"
	CodecArgon2id = "argon2id"
)

// Codec encodes plaintext credentials into digests and verifies plaintext against them.
//
// Verify returns (true, nil) for a match, (false, nil) for a mismatch and
// (false, ErrInvalidDigest) when the stored digest is malformed.
type Codec interface {
	Name() string
	Encode(plaintext string) (string, error)
	Verify(digest, plaintext string) (bool, error)
}

// New returns the codec registered under name. An empty name selects SHA-256.
func New(name string, params Argon2idParams) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CodecSHA256:
		return SHA256Codec{}, nil
	case CodecArgon2id:
		c, err := NewArgon2idCodec(params)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}
