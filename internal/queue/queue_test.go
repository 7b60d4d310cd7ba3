package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFIFO(t *testing.T) {
	require := require.New(t)

	q := NewFIFO[int](4)
	require.True(q.IsEmpty())
	require.Equal(0, q.Length())

	_, ok := q.Pop()
	require.False(ok)

	_, ok = q.Peek()
	require.False(ok)

	q.Push(1)
	q.Push(2)
	q.Push(3)
	require.Equal(3, q.Length())

	head, ok := q.Peek()
	require.True(ok)
	require.Equal(1, head)
	require.Equal(3, q.Length())

	item, ok := q.Pop()
	require.True(ok)
	require.Equal(1, item)

	item, ok = q.Pop()
	require.True(ok)
	require.Equal(2, item)

	q.Push(4)

	item, ok = q.Pop()
	require.True(ok)
	require.Equal(3, item)

	item, ok = q.Pop()
	require.True(ok)
	require.Equal(4, item)

	require.True(q.IsEmpty())
}

func TestFIFOReplaceHead(t *testing.T) {
	require := require.New(t)

	q := NewFIFO[[]byte](2)
	q.Push([]byte{1, 2, 3})
	q.ReplaceHead([]byte{2, 3})

	head, ok := q.Pop()
	require.True(ok)
	require.Equal([]byte{2, 3}, head)
}

func TestFIFOReset(t *testing.T) {
	require := require.New(t)

	q := NewFIFO[string](0)
	q.Push("a")
	q.Push("b")
	q.Reset()
	require.True(q.IsEmpty())

	q.Push("c")
	item, ok := q.Pop()
	require.True(ok)
	require.Equal("c", item)
}
