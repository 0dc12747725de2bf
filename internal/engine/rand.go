package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// Rand is the random source used for drawing items and simulated signals
type Rand interface {
	// IntN returns a value in [0, n). n must be > 0.
	IntN(n int) int
	Float64() float64
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a clock-seeded source safe for concurrent use
func NewRand() Rand {
	seed := uint64(time.Now().UnixNano())
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// SeededRand is a reproducible stream built from HMAC-SHA256 blocks keyed by
// the seed. The same seed always yields the same sequence.
type SeededRand struct {
	mu     sync.Mutex
	seed   string
	block  uint64
	pos    int
	buffer [32]byte
}

// NewSeededRand creates a deterministic source for seed
func NewSeededRand(seed string) *SeededRand {
	s := &SeededRand{seed: seed}
	s.fill()
	return s
}

func (s *SeededRand) fill() {
	h := hmac.New(sha256.New, []byte(s.seed))
	fmt.Fprintf(h, "wordquest:%d", s.block)
	copy(s.buffer[:], h.Sum(nil))
	s.pos = 0
}

func (s *SeededRand) next64() uint64 {
	if s.pos+8 > len(s.buffer) {
		s.block++
		s.fill()
	}
	v := binary.BigEndian.Uint64(s.buffer[s.pos : s.pos+8])
	s.pos += 8
	return v
}

// IntN returns a uniform value in [0, n) using rejection sampling
func (s *SeededRand) IntN(n int) int {
	if n <= 0 {
		panic("engine: IntN called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bound := uint64(n)
	limit := ^uint64(0) - (^uint64(0) % bound)
	for {
		v := s.next64()
		if v < limit {
			return int(v % bound)
		}
	}
}

// Float64 returns a value in [0, 1)
func (s *SeededRand) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.next64()>>11) / (1 << 53)
}
