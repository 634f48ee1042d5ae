// Package id mints opaque identifiers for requests and CLI runs.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// Generator creates opaque IDs suitable for correlating log lines.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator returns 16 random bytes, hex encoded.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", crerr.Wrap(err, "read random bytes")
	}
	return hex.EncodeToString(buf), nil
}

// OrFallback returns a generated ID, or a nanosecond timestamp when the
// generator fails. It never returns an empty string.
func OrFallback(g Generator) string {
	if g != nil {
		if v, err := g.NewID(); err == nil && v != "" {
			return v
		}
	}
	return "t" + strconv.FormatInt(time.Now().UnixNano(), 36)
}
