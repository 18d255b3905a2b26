package policy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLFUEvictsLeastFrequent(t *testing.T) {
	lfu := NewLFU[string](WithMaxSize(3))

	lfu.OnSet("a")
	lfu.OnSet("b")
	lfu.OnSet("c")

	lfu.OnGet("a")
	lfu.OnGet("a")
	lfu.OnGet("b")

	key, ok := lfu.Evict()
	require.True(t, ok)
	require.Equal(t, "c", key)

	key, ok = lfu.Evict()
	require.True(t, ok)
	require.Equal(t, "b", key)

	key, ok = lfu.Evict()
	require.True(t, ok)
	require.Equal(t, "a", key)

	_, ok = lfu.Evict()
	require.False(t, ok)
}

func TestLFUOverwriteCountsAsAccess(t *testing.T) {
	lfu := NewLFU[string]()

	lfu.OnSet("x")
	lfu.OnSet("y")
	lfu.OnSet("x")

	key, ok := lfu.Evict()
	require.True(t, ok)
	require.Equal(t, "y", key)
}

func TestLFUDeleteAndClear(t *testing.T) {
	lfu := NewLFU[string]()

	for i := 0; i < 5; i++ {
		lfu.OnSet(fmt.Sprintf("k%d", i))
	}
	lfu.OnDelete("k2")
	require.Equal(t, 4, lfu.Size())

	lfu.OnClear()
	require.Equal(t, 0, lfu.Size())
	_, ok := lfu.Evict()
	require.False(t, ok)
}

func TestLFUCapacity(t *testing.T) {
	lfu := NewLFU[string](WithMaxSize(9))
	require.Equal(t, 9, lfu.Capacity())
}
