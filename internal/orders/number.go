package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

const numberAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NumberGenerator produces human-readable order numbers that are unique
// with very high probability. Collisions surface as unique-constraint
// violations and are retried by the checkout loop.
type NumberGenerator interface {
	Next(now time.Time) (string, error)
}

type numberGenerator struct{}

// NewNumberGenerator returns the default BM-YYYYMMDD-XXXXXX generator.
func NewNumberGenerator() NumberGenerator {
	return numberGenerator{}
}

// Next returns an order number like BM-20250301-7KQ2MF. The suffix is drawn
// from a crockford-style alphabet with ambiguous characters removed.
func (numberGenerator) Next(now time.Time) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return fmt.Sprintf("BM-%s-%s", now.UTC().Format("20060102"), string(buf)), nil
}
