// Package random derives independent, reproducible random streams for each
// randomized pipeline stage from one root seed.
package random

import (
	"math/rand/v2"
)

// Stream identifies the consumer of a random stream.
type Stream uint64

const (
	StreamSample Stream = iota + 1
	StreamMutualInfo
	StreamSplit
)

func (s Stream) String() string {
	switch s {
	case StreamSample:
		return "sample"
	case StreamMutualInfo:
		return "mutual_info"
	case StreamSplit:
		return "split"
	default:
		return "unknown"
	}
}

// golden-ratio increment, spreads stream ids across the PCG state space
const streamMix = 0x9E3779B97F4A7C15

// Source returns the PCG source for stream s under seed.
// The same (seed, s) pair always yields the same sequence.
func Source(seed uint64, s Stream) *rand.PCG {
	return rand.NewPCG(seed, uint64(s)*streamMix)
}

// New returns a generator over Source(seed, s).
func New(seed uint64, s Stream) *rand.Rand {
	return rand.New(Source(seed, s))
}
