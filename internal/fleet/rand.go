package fleet

import (
	"math/rand"
	"time"
)

// Rand is the random source shared by failure draws and fault selection.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewSeededRand returns a reproducible source for the given seed.
func NewSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func newTimeSeededRand() *rand.Rand {
	return NewSeededRand(time.Now().UnixNano())
}
