package sets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := New("a", "b", "a")
	require.Equal(t, 2, s.Len())
	require.True(t, s.Has("a"))
	require.False(t, s.Has("c"))

	s.Add("c")
	require.True(t, s.Has("c"))

	s.Delete("a")
	require.False(t, s.Has("a"))
	require.Equal(t, 2, s.Len())
}

func TestInsert(t *testing.T) {
	s := New[int]()
	require.True(t, s.Insert(1))
	require.False(t, s.Insert(1))
	require.True(t, s.Insert(2))
	require.Equal(t, 2, s.Len())
}
