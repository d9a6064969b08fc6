// Package redeem issues the short display codes members read out to bar
// staff when claiming a drink token. The codes are not verified anywhere
// and must not be treated as a security mechanism.
package redeem

import (
	"math/rand"
	"sync"
	"time"
)

const (
	// Alphabet is the 36 character set codes are drawn from
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// DefaultLength is the number of characters in a code
	DefaultLength = 5
	// DefaultInterval is how long a code stays on screen before it is replaced
	DefaultInterval = 60 * time.Second
)

// Generator draws codes uniformly from an alphabet with a non-cryptographic RNG
type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	alphabet string
	length   int
}

// NewGenerator creates a generator. A zero seed uses the current time.
func NewGenerator(alphabet string, length int, seed int64) *Generator {
	if alphabet == "" {
		alphabet = Alphabet
	}
	if length <= 0 {
		length = DefaultLength
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng:      rand.New(rand.NewSource(seed)),
		alphabet: alphabet,
		length:   length,
	}
}

// Generate returns a fresh code
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	buf := make([]byte, g.length)
	for i := range buf {
		buf[i] = g.alphabet[g.rng.Intn(len(g.alphabet))]
	}
	return string(buf)
}
