package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argon2Version = 19 // argon2.Version is 0x13 (19)
	argon2Prefix  = "$argon2id$"
)

// Argon2idCodec hashes credentials with Argon2id and a random salt.
// Format:
// $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<hash_b64>
type Argon2idCodec struct {
	params Argon2idParams
}

// NewArgon2idCodec validates params and returns a codec using them.
func NewArgon2idCodec(p Argon2idParams) (*Argon2idCodec, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Argon2idCodec{params: p}, nil
}

// Name implements Codec.
func (c *Argon2idCodec) Name() string { return CodecArgon2id }

// Params returns the cost parameters used by Encode.
func (c *Argon2idCodec) Params() Argon2idParams { return c.params }

// Encode implements Codec.
func (c *Argon2idCodec) Encode(plaintext string) (string, error) {
	salt := make([]byte, c.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		c.params.Iterations,
		c.params.MemoryKiB,
		c.params.Parallelism,
		c.params.KeyLength,
	)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version,
		c.params.MemoryKiB,
		c.params.Iterations,
		c.params.Parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

// Verify implements Codec. Legacy SHA-256 hex digests are accepted and checked
// with SHA256Codec so accounts created before a codec switch keep working.
func (c *Argon2idCodec) Verify(digest, plaintext string) (bool, error) {
	if !strings.HasPrefix(digest, argon2Prefix) {
		return SHA256Codec{}.Verify(digest, plaintext)
	}

	params, salt, expected, err := decodeArgon2id(digest)
	if err != nil {
		return false, err
	}

	// Refuse attacker-sized parameters before doing any work.
	if !withinReasonableBounds(params, c.params) {
		return false, ErrInvalidDigest
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		params.Iterations,
		params.MemoryKiB,
		params.Parallelism,
		uint32(len(expected)), // #nosec G115 -- bounded by decodeArgon2id.
	)

	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

func withinReasonableBounds(got, limits Argon2idParams) bool {
	if got.MemoryKiB > limits.MemoryKiB*2 {
		return false
	}
	if got.Iterations > limits.Iterations*2 {
		return false
	}
	if got.Parallelism > limits.Parallelism*2 {
		return false
	}
	if got.SaltLength < 8 || got.SaltLength > 64 {
		return false
	}
	if got.KeyLength < 16 || got.KeyLength > 128 {
		return false
	}
	return true
}

// decodeArgon2id parses the encoded digest and returns params, salt and expected key.
func decodeArgon2id(encoded string) (Argon2idParams, []byte, []byte, error) {
	// $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Argon2idParams{}, nil, nil, ErrInvalidDigest
	}
	if parts[2] != "v=19" {
		return Argon2idParams{}, nil, nil, ErrInvalidDigest
	}

	var mem, it, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil {
		return Argon2idParams{}, nil, nil, ErrInvalidDigest
	}
	if mem == 0 || it == 0 || par == 0 || par > 255 {
		return Argon2idParams{}, nil, nil, ErrInvalidDigest
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Argon2idParams{}, nil, nil, ErrInvalidDigest
	}
	hash, err := b64.DecodeString(parts[5])
	if err != nil {
		return Argon2idParams{}, nil, nil, ErrInvalidDigest
	}

	params := Argon2idParams{
		MemoryKiB:   mem,
		Iterations:  it,
		Parallelism: uint8(par),
		SaltLength:  uint32(len(salt)), // #nosec G115 -- checked by withinReasonableBounds.
		KeyLength:   uint32(len(hash)), // #nosec G115 -- checked by withinReasonableBounds.
	}
	return params, salt, hash, nil
}
