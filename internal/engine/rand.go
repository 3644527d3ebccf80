package engine

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/roach88/kanjimerge/internal/grid"
)

// IntNSource supplies uniform draws for refills. *rand.Rand satisfies it;
// tests inject scripted sources.
type IntNSource = grid.IntNSource

// NewSeededRand returns a ChaCha8-backed generator whose stream depends only
// on seed, so a recorded session can be replayed draw for draw.
func NewSeededRand(seed uint64) *rand.Rand {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	return rand.New(rand.NewChaCha8(key))
}
