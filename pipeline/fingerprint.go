package pipeline

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/mat"
)

// Fingerprint hashes the deterministic outputs of a run: the encoding table,
// the feature scores and selection, split membership, and the test
// predictions. Two runs with equal inputs and configuration have equal
// fingerprints. The run id is not included.
func (r *Result) Fingerprint() uint64 {
	h := xxhash.New()
	var buf []byte

	str := func(s string) {
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(len(s)))
		h.Write(buf)
		h.WriteString(s)
	}
	num := func(v float64) {
		buf = binary.LittleEndian.AppendUint64(buf[:0], math.Float64bits(v))
		h.Write(buf)
	}
	ints := func(v []int) {
		num(float64(len(v)))
		for _, x := range v {
			buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(x))
			h.Write(buf)
		}
	}
	vec := func(v *mat.VecDense) {
		if v == nil {
			num(0)
			return
		}
		num(float64(v.Len()))
		for i := 0; i < v.Len(); i++ {
			num(v.AtVec(i))
		}
	}

	if r.Encoding != nil {
		for _, c := range r.Encoding.Columns() {
			str(c)
			classes := r.Encoding.Classes(c)
			num(float64(len(classes)))
			for _, v := range classes {
				str(v)
			}
		}
	}
	for _, s := range r.Scores {
		str(s.Feature)
		num(s.Value)
	}
	for _, s := range r.Selected {
		str(s)
	}
	if r.Split != nil {
		ints(r.Split.Train)
		ints(r.Split.Test)
	}
	vec(r.YPred)
	return h.Sum64()
}
