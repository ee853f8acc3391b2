// Package rng implements the game's pseudo-random source: two Galois LFSRs with distinct
// feedback polynomials, stepped together and xor-combined into 16-bit draws.
package rng

import (
	"errors"
	"sync"
	"time"

	"github.com/lixenwraith/cube-hunter/core"
)

const (
	// PolyMask32 is the feedback polynomial of the first register (stepped twice per draw)
	PolyMask32 uint32 = 0xB4BCD35C
	// PolyMask31 is the feedback polynomial of the second register (stepped once per draw)
	PolyMask31 uint32 = 0x7A5BC2E3
	// OutputMask bounds every draw to 16 bits
	OutputMask uint32 = 0xFFFF

	// zeroSeed replaces an all-zero register, which would never leave zero
	zeroSeed uint32 = 0x1D872B41
)

// ErrAlreadySeeded is returned when Seed is called a second time
var ErrAlreadySeeded = errors.New("rng already seeded")

// Generator is a goroutine-safe LFSR pair
// Zero value is unseeded; drawing before Seed is a fatal fault
type Generator struct {
	mu     sync.Mutex
	lfsr32 uint32
	lfsr31 uint32
	seeded bool
}

// New returns an unseeded generator
func New() *Generator {
	return &Generator{}
}

// NewSeeded returns a generator seeded with the given register values
func NewSeeded(a, b uint32) *Generator {
	g := &Generator{}
	_ = g.Seed(a, b)
	return g
}

// Seed sets both registers. Allowed exactly once per generator
func (g *Generator) Seed(a, b uint32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.seeded {
		return ErrAlreadySeeded
	}
	if a == 0 {
		a = zeroSeed
	}
	if b == 0 {
		b = zeroSeed
	}
	g.lfsr32 = a
	g.lfsr31 = b
	g.seeded = true
	return nil
}

// Seeded reports whether Seed has been called
func (g *Generator) Seeded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seeded
}

// shift advances one Galois register and returns its new value
func shift(lfsr *uint32, polyMask uint32) uint32 {
	feedback := *lfsr & 1
	*lfsr >>= 1
	if feedback == 1 {
		*lfsr ^= polyMask
	}
	return *lfsr
}

// Next returns the next 16-bit draw
func (g *Generator) Next() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.seeded {
		core.Fatal("RNG consumed before seeding", "")
	}

	shift(&g.lfsr32, PolyMask32)
	return (shift(&g.lfsr32, PolyMask32) ^ shift(&g.lfsr31, PolyMask31)) & OutputMask
}

// Intn returns Next() modulo n; n must be positive
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		core.Fatal("Intn called with non-positive bound", "")
	}
	return int(g.Next() % uint32(n))
}

// SeedFromSample derives a seed pair from a raw two-axis input sample,
// mixed with the monotonic clock so an untouched stick still varies between runs
func SeedFromSample(rawX, rawY uint16, now time.Time) (uint32, uint32) {
	a := uint32(rawX)<<16 | uint32(rawY)
	b := uint32(rawY)<<16 | uint32(rawX)
	mix := uint32(now.UnixNano())
	return a ^ mix, b ^ (mix<<7 | mix>>25)
}
