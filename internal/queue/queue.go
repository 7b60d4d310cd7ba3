// Package queue provides a minimal FIFO used by the wire-level buffering code.
package queue

// FIFO is an unbounded first-in-first-out queue backed by a slice.
//
// The zero value is ready to use. FIFO is not goroutine-safe; callers
// serialize access with their own lock.
type FIFO[T any] struct {
	items []T
}

// NewFIFO creates a FIFO with capacity preallocated for prealloc items.
func NewFIFO[T any](prealloc int) *FIFO[T] {
	return &FIFO[T]{items: make([]T, 0, prealloc)}
}

// Push adds an item to the tail of the queue.
func (q *FIFO[T]) Push(item T) {
	q.items = append(q.items, item)
}

// Pop removes and returns the item at the head of the queue.
// The second return value is false if the queue is empty.
func (q *FIFO[T]) Pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero // release the reference for the garbage collector
	q.items = q.items[1:]
	return item, true
}

// Peek returns the item at the head of the queue without removing it.
// The second return value is false if the queue is empty.
func (q *FIFO[T]) Peek() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[0], true
}

// ReplaceHead overwrites the item at the head of the queue.
// It panics if the queue is empty.
func (q *FIFO[T]) ReplaceHead(item T) {
	q.items[0] = item
}

// Reset resets the queue to an empty state.
func (q *FIFO[T]) Reset() {
	clear(q.items)
	q.items = q.items[:0] // reslice to 0 length to reuse the underlying array
}

// IsEmpty returns true if the queue is empty, false otherwise.
func (q *FIFO[T]) IsEmpty() bool {
	return len(q.items) == 0
}

// Length returns the number of items in the queue.
func (q *FIFO[T]) Length() int {
	return len(q.items)
}
