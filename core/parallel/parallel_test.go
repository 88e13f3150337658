package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelizeCoversEveryIndexOnce(t *testing.T) {
	for _, items := range []int{0, 1, 7, 100, 1013} {
		hits := make([]int32, items)
		Parallelize(items, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			assert.Equalf(t, int32(1), h, "items=%d index=%d", items, i)
		}
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, 1, calls)
}

func TestForEachDisjointWrites(t *testing.T) {
	out := make([]int, 500)
	ForEach(len(out), 0, func(i int) { out[i] = i * i })
	for i, v := range out {
		assert.Equal(t, i*i, v)
	}
}
