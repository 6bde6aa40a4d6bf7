// Package ring provides a fixed-capacity circular byte queue.
//
// The queue is meant to be shared by exactly one producer and one consumer.
// The producer only advances the write cursor (Write) and the consumer only
// advances the read cursor (Read, Discard). Callers sharing a Queue across
// goroutines must guard it with a single lock, see package uart.
package ring

import (
	"bytes"
	"fmt"
)

// Queue is a circular byte queue with size slots. One slot always stays
// unused to tell a full queue from an empty one, so Cap is size-1.
type Queue struct {
	buf   []byte
	valid []bool
	read  int
	write int
}

// New creates a Queue with size slots.
func New(size int) *Queue {
	if size < 2 {
		panic(fmt.Sprintf("ring: invalid size %d", size))
	}
	return &Queue{
		buf:   make([]byte, size),
		valid: make([]bool, size),
	}
}

// Size returns the number of slots.
func (q *Queue) Size() int {
	return len(q.buf)
}

// Cap returns the number of usable slots.
func (q *Queue) Cap() int {
	return len(q.buf) - 1
}

// Len returns the number of buffered bytes.
func (q *Queue) Len() int {
	return (q.write - q.read + len(q.buf)) % len(q.buf)
}

// IsEmpty indicates no bytes are buffered.
func (q *Queue) IsEmpty() bool {
	return q.read == q.write
}

// IsFull indicates a Write would fail.
func (q *Queue) IsFull() bool {
	return q.next(q.write) == q.read
}

// Write appends b. It returns false and leaves the queue untouched when full.
func (q *Queue) Write(b byte) bool {
	if q.IsFull() {
		return false
	}
	q.buf[q.write], q.valid[q.write] = b, true
	q.write = q.next(q.write)
	return true
}

// Read removes and returns the oldest byte.
func (q *Queue) Read() (byte, bool) {
	if q.IsEmpty() {
		return 0, false
	}
	if !q.valid[q.read] {
		panic("ring: read of unwritten slot")
	}
	b := q.buf[q.read]
	q.buf[q.read], q.valid[q.read] = 0, false
	q.read = q.next(q.read)
	return b, true
}

// Peek returns the oldest byte without removing it.
func (q *Queue) Peek() (byte, bool) {
	if q.IsEmpty() {
		return 0, false
	}
	return q.buf[q.read], true
}

// Discard removes up to n oldest bytes and returns how many were removed.
func (q *Queue) Discard(n int) int {
	var count int
	for ; count < n; count++ {
		if _, ok := q.Read(); !ok {
			break
		}
	}
	return count
}

// Snapshot copies up to len(dst) oldest bytes into dst without consuming
// them and returns the number of bytes copied.
func (q *Queue) Snapshot(dst []byte) int {
	var n int
	for it := q.Iter(); n < len(dst); n++ {
		b, ok := it.Next()
		if !ok {
			break
		}
		dst[n] = b
	}
	return n
}

// IndexByte returns the offset of the first b from the front, or -1.
func (q *Queue) IndexByte(b byte) int {
	it := q.Iter()
	for n := 0; ; n++ {
		v, ok := it.Next()
		if !ok {
			return -1
		}
		if v == b {
			return n
		}
	}
}

// Iter starts a new iteration from the oldest byte. Iterators are not
// valid across mutations of the queue.
func (q *Queue) Iter() *Iterator {
	return &Iterator{q: q, pos: q.read}
}

// String implements fmt.Stringer.
func (q *Queue) String() string {
	var w bytes.Buffer
	w.WriteString("ring.Queue[")
	for it, first := q.Iter(), true; ; first = false {
		b, ok := it.Next()
		if !ok {
			break
		}
		if !first {
			w.WriteByte(' ')
		}
		fmt.Fprintf(&w, "%02x", b)
	}
	w.WriteByte(']')
	return w.String()
}

func (q *Queue) next(pos int) int {
	return (pos + 1) % len(q.buf)
}

// Iterator walks buffered bytes from oldest to newest.
type Iterator struct {
	q   *Queue
	pos int
}

// Next returns the next byte, or false when the end is reached.
func (it *Iterator) Next() (byte, bool) {
	if it.pos == it.q.write {
		return 0, false
	}
	b := it.q.buf[it.pos]
	it.pos = it.q.next(it.pos)
	return b, true
}
