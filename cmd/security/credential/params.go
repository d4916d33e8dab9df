package credential

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2idParams returns the baseline cost for interactive requests.
func DefaultArgon2idParams() Argon2idParams {
	// Clamp to [1..4] to keep resource usage predictable in containers.
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Argon2idParams{
		MemoryKiB:   64 * 1024, // 64 MiB
		Iterations:  3,
		Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above.
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (p Argon2idParams) validate() error {
	switch {
	case p.MemoryKiB == 0:
		return fmt.Errorf("argon2id: memory must be positive")
	case p.Iterations == 0:
		return fmt.Errorf("argon2id: iterations must be positive")
	case p.Parallelism == 0:
		return fmt.Errorf("argon2id: parallelism must be positive")
	case p.SaltLength < 8 || p.SaltLength > 64:
		return fmt.Errorf("argon2id: salt length out of range [8..64]")
	case p.KeyLength < 16 || p.KeyLength > 128:
		return fmt.Errorf("argon2id: key length out of range [16..128]")
	}
	return nil
}

// Argon2idParamsFromEnv starts from DefaultArgon2idParams and applies overrides.
//
// Env surface:
// - ACCOUNTS_ARGON2_MEMORY_KIB
// - ACCOUNTS_ARGON2_ITERATIONS
// - ACCOUNTS_ARGON2_PARALLELISM
// - ACCOUNTS_ARGON2_SALT_LEN
// - ACCOUNTS_ARGON2_KEY_LEN
func Argon2idParamsFromEnv() (Argon2idParams, error) {
	p := DefaultArgon2idParams()

	if v, ok := os.LookupEnv("ACCOUNTS_ARGON2_MEMORY_KIB"); ok {
		u, err := atou32(v, 8*1024, 1024*1024) // 8 MiB .. 1 GiB
		if err != nil {
			return Argon2idParams{}, fmt.Errorf("ACCOUNTS_ARGON2_MEMORY_KIB: %w", err)
		}
		p.MemoryKiB = u
	}

	if v, ok := os.LookupEnv("ACCOUNTS_ARGON2_ITERATIONS"); ok {
		u, err := atou32(v, 1, 20)
		if err != nil {
			return Argon2idParams{}, fmt.Errorf("ACCOUNTS_ARGON2_ITERATIONS: %w", err)
		}
		p.Iterations = u
	}

	if v, ok := os.LookupEnv("ACCOUNTS_ARGON2_PARALLELISM"); ok {
		u, err := atou32(v, 1, 64)
		if err != nil {
			return Argon2idParams{}, fmt.Errorf("ACCOUNTS_ARGON2_PARALLELISM: %w", err)
		}
		par, err := u32ToU8(u)
		if err != nil {
			return Argon2idParams{}, fmt.Errorf("ACCOUNTS_ARGON2_PARALLELISM: %w", err)
		}
		p.Parallelism = par
	}

	if v, ok := os.LookupEnv("ACCOUNTS_ARGON2_SALT_LEN"); ok {
		u, err := atou32(v, 8, 64)
		if err != nil {
			return Argon2idParams{}, fmt.Errorf("ACCOUNTS_ARGON2_SALT_LEN: %w", err)
		}
		p.SaltLength = u
	}

	if v, ok := os.LookupEnv("ACCOUNTS_ARGON2_KEY_LEN"); ok {
		u, err := atou32(v, 16, 64)
		if err != nil {
			return Argon2idParams{}, fmt.Errorf("ACCOUNTS_ARGON2_KEY_LEN: %w", err)
		}
		p.KeyLength = u
	}

	return p, nil
}

func atou32(s string, minVal, maxVal uint32) (uint32, error) {
	u64, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}

	u := uint32(u64)
	if u < minVal || u > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return u, nil
}

func u32ToU8(u uint32) (uint8, error) {
	if u > math.MaxUint8 {
		return 0, fmt.Errorf("out of range [0..%d]", math.MaxUint8)
	}
	return uint8(u), nil
}
