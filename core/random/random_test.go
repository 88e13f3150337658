package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamsAreReproducible(t *testing.T) {
	a := New(42, StreamSplit).Perm(50)
	b := New(42, StreamSplit).Perm(50)
	assert.Equal(t, a, b)
}

func TestStreamsAreIndependent(t *testing.T) {
	a := New(42, StreamSample).Perm(50)
	b := New(42, StreamSplit).Perm(50)
	assert.NotEqual(t, a, b)

	c := New(7, StreamSample).Perm(50)
	assert.NotEqual(t, a, c)
}

func TestStreamString(t *testing.T) {
	assert.Equal(t, "mutual_info", StreamMutualInfo.String())
	assert.Equal(t, "unknown", Stream(99).String())
}
