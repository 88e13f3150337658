package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/autoprice/preprocessing"
)

func TestSynthetic(t *testing.T) {
	a := Synthetic(500, 7)
	b := Synthetic(500, 7)

	assert.Equal(t, preprocessing.RecordColumns(), a.Names())
	assert.Equal(t, 500, a.NRows())

	pa, err := a.Numeric("price")
	require.NoError(t, err)
	pb, _ := b.Numeric("price")
	assert.Equal(t, pa, pb)

	missing, err := a.CountMissing("year")
	require.NoError(t, err)
	assert.Greater(t, missing, 0)
	assert.Less(t, missing, 100)

	inRange := 0
	for _, p := range pa {
		if !math.IsNaN(p) && p > 500 && p < 80000 {
			inRange++
		}
	}
	assert.Greater(t, inRange, 400)

	c := Synthetic(500, 8)
	pc, _ := c.Numeric("price")
	assert.NotEqual(t, pa, pc)
}
