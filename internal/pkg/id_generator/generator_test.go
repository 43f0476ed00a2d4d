package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSonyflake(t *testing.T) {
	t.Parallel()
	sf, err := NewSonyflake(1)
	require.NoError(t, err)

	var g Generator = sf
	seen := make(map[uint64]struct{}, 100)
	for i := 0; i < 100; i++ {
		v, err := g.NextID()
		require.NoError(t, err)
		_, ok := seen[v]
		assert.False(t, ok)
		seen[v] = struct{}{}
	}
}

func TestSequence(t *testing.T) {
	t.Parallel()
	s := NewSequence(10)
	v, _ := s.NextID()
	assert.Equal(t, uint64(11), v)
	v, _ = s.NextID()
	assert.Equal(t, uint64(12), v)
}
