// Package code generates short numeric one-time codes.
package code

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Length is the number of digits in an activation code.
const Length = 4

const digits = "0123456789"

// Generate returns a Length-digit code, each digit drawn uniformly from 0-9
// using crypto/rand.
func Generate() (string, error) {
	return generateFrom(rand.Reader, Length)
}

func generateFrom(r io.Reader, n int) (string, error) {
	out := make([]byte, n)
	upper := big.NewInt(int64(len(digits)))
	for i := range out {
		v, err := rand.Int(r, upper)
		if err != nil {
			return "", fmt.Errorf("code: %w", err)
		}
		out[i] = digits[v.Int64()]
	}
	return string(out), nil
}

// Generator is the function type consumers depend on so tests can pin codes.
type Generator func() (string, error)

// Fixed returns a Generator that always yields c.
func Fixed(c string) Generator {
	return func() (string, error) { return c, nil }
}
