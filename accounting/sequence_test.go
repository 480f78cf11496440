package accounting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceAllocatorIsMonotonic(t *testing.T) {
	ctx := newTestContext(t)
	seq := NewSequenceAllocator()

	for want := int64(1); want <= 5; want++ {
		got, err := seq.Next(ctx.DB)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestSequenceAllocatorMissingRow(t *testing.T) {
	ctx := newTestContext(t)

	seq := &SequenceAllocator{name: "no_such_sequence"}
	_, err := seq.Next(ctx.DB)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}
