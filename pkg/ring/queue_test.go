package ring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(q *Queue) []byte {
	var out []byte
	it := q.Iter()
	for {
		b, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, b)
	}
}

func requireEnd(t *testing.T, it *Iterator) {
	for i := 0; i < 3; i++ {
		_, ok := it.Next()
		require.False(t, ok)
	}
}

func TestEmpty(t *testing.T) {
	q := New(4)
	require.Equal(t, 0, q.Len())
	require.Equal(t, 3, q.Cap())
	require.True(t, q.IsEmpty())
	require.False(t, q.IsFull())
	requireEnd(t, q.Iter())

	_, ok := q.Peek()
	require.False(t, ok)
	_, ok = q.Read()
	require.False(t, ok)
	require.Equal(t, 0, q.Snapshot(make([]byte, 8)))
	require.Equal(t, 0, q.Discard(2))
	require.Equal(t, -1, q.IndexByte(0))
	require.Equal(t, "ring.Queue[]", q.String())
}

func TestReadWrite(t *testing.T) {
	q := New(4)
	require.True(t, q.Write(3))
	require.Equal(t, 1, q.Len())
	require.False(t, q.IsEmpty())
	require.False(t, q.IsFull())

	it := q.Iter()
	b, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, byte(3), b)
	requireEnd(t, it)
	require.Equal(t, 1, q.Len())

	b, ok = q.Peek()
	require.True(t, ok)
	require.Equal(t, byte(3), b)
	require.Equal(t, 1, q.Len())

	b, ok = q.Read()
	require.True(t, ok)
	require.Equal(t, byte(3), b)
	require.Equal(t, 0, q.Len())
}

func TestFill(t *testing.T) {
	q := New(4)
	require.True(t, q.Write(3))
	require.True(t, q.Write(4))
	require.True(t, q.Write(5))
	require.False(t, q.Write(6))

	require.Equal(t, 3, q.Len())
	require.True(t, q.IsFull())
	require.Equal(t, []byte{3, 4, 5}, collect(q))
	require.Equal(t, "ring.Queue[03 04 05]", q.String())

	for _, expect := range []byte{3, 4, 5} {
		b, ok := q.Peek()
		require.True(t, ok)
		require.Equal(t, expect, b)
		b, ok = q.Read()
		require.True(t, ok)
		require.Equal(t, expect, b)
	}
	require.True(t, q.IsEmpty())
}

func TestWrapAround(t *testing.T) {
	q := New(4)
	require.True(t, q.Write(3))
	require.True(t, q.Write(4))
	require.True(t, q.Write(5))
	require.Equal(t, []byte{3, 4, 5}, collect(q))

	b, _ := q.Read()
	require.Equal(t, byte(3), b)
	require.Equal(t, 2, q.Len())
	require.True(t, q.Write(6))
	require.Equal(t, []byte{4, 5, 6}, collect(q))
	require.Equal(t, 3, q.Len())

	for _, expect := range []byte{4, 5, 6} {
		b, ok := q.Read()
		require.True(t, ok)
		require.Equal(t, expect, b)
	}
	require.Equal(t, 0, q.Len())
}

func TestFullWriteKeepsState(t *testing.T) {
	q := New(3)
	require.True(t, q.Write(1))
	require.True(t, q.Write(2))
	before := *q
	require.False(t, q.Write(9))
	require.Equal(t, before.read, q.read)
	require.Equal(t, before.write, q.write)
	require.Equal(t, []byte{1, 2}, collect(q))
}

func TestSnapshot(t *testing.T) {
	q := New(8)
	for b := byte(1); b <= 5; b++ {
		require.True(t, q.Write(b))
	}
	read, write := q.read, q.write

	dst := make([]byte, 3)
	require.Equal(t, 3, q.Snapshot(dst))
	require.Equal(t, []byte{1, 2, 3}, dst)

	dst = make([]byte, 10)
	require.Equal(t, 5, q.Snapshot(dst))
	require.Equal(t, []byte{1, 2, 3, 4, 5}, dst[:5])

	require.Equal(t, read, q.read)
	require.Equal(t, write, q.write)
	require.Equal(t, 5, q.Len())
}

func TestDiscardAndIndex(t *testing.T) {
	q := New(8)
	for _, b := range []byte{0x01, 0x55, 0x02, 0x55} {
		q.Write(b)
	}
	require.Equal(t, 1, q.IndexByte(0x55))
	require.Equal(t, -1, q.IndexByte(0x77))
	require.Equal(t, 1, q.Discard(1))
	require.Equal(t, 0, q.IndexByte(0x55))
	require.Equal(t, 3, q.Discard(10))
	require.True(t, q.IsEmpty())
}

func TestIterRestartable(t *testing.T) {
	q := New(5)
	q.Write(7)
	q.Write(8)
	require.Equal(t, collect(q), collect(q))
	it := q.Iter()
	it.Next()
	require.Equal(t, []byte{7, 8}, collect(q))
}

func TestInvalidSize(t *testing.T) {
	require.Panics(t, func() { New(1) })
	require.Panics(t, func() { New(0) })
}

func TestRandomOperations(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	q := New(16)
	var model []byte
	for i := 0; i < 10000; i++ {
		if rnd.Intn(2) == 0 {
			b := byte(rnd.Intn(256))
			ok := q.Write(b)
			require.Equal(t, len(model) < q.Cap(), ok)
			if ok {
				model = append(model, b)
			}
		} else {
			b, ok := q.Read()
			require.Equal(t, len(model) > 0, ok)
			if ok {
				require.Equal(t, model[0], b)
				model = model[1:]
			}
		}
		require.Equal(t, len(model), q.Len())
		require.True(t, q.Len() <= q.Cap())
	}
}
