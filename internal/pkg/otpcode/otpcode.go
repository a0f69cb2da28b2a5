// Package otpcode generates numeric one-time passcodes.
//
// Codes come from crypto/rand only. A predictable source would let an attacker
// who observes a few codes guess the next one, so the reader is never math/rand.
package otpcode

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	MinLength     = 4
	MaxLength     = 10
	DefaultLength = 6
)

// Generator draws fixed-width decimal codes.
type Generator struct {
	rand io.Reader
}

// New returns a Generator reading from crypto/rand.
func New() *Generator {
	return &Generator{rand: rand.Reader}
}

// Generate returns a length-digit code, zero padded, uniformly distributed over [0, 10^length).
func (g *Generator) Generate(length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", fmt.Errorf("otp length %d out of range [%d, %d]", length, MinLength, MaxLength)
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(g.rand, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}
