package rosproto

import (
	"fmt"
	"sync"

	"github.com/ispgear/rosbridge/internal/queue"
)

// readResult carries the outcome of one exact-size read back to its waiter.
type readResult struct {
	data []byte
	err  error
}

// readWaiter is one pending exact-size read request.
type readWaiter struct {
	n  int
	ch chan readResult
}

// ByteStream buffers inbound byte chunks from a transport and serves
// exact-size read requests regardless of how the transport chunked the data.
//
// A receiver goroutine calls Feed as chunks arrive, and End or Fail exactly
// once when the transport terminates. Decoders call ReadExact, which blocks
// until enough bytes have been buffered or the stream terminates.
//
// Pending reads are served strictly in submission order: a later, smaller
// request is never satisfied ahead of an earlier, larger one still waiting
// on bytes. Only the request at the head of the waiter queue is ever being
// satisfied at a time.
type ByteStream struct {
	mu       sync.Mutex
	chunks   *queue.FIFO[[]byte]
	waiters  *queue.FIFO[*readWaiter]
	buffered int
	ended    bool
	err      error
}

// NewByteStream creates an empty ByteStream.
func NewByteStream() *ByteStream {
	return &ByteStream{
		chunks:  queue.NewFIFO[[]byte](8),
		waiters: queue.NewFIFO[*readWaiter](2),
	}
}

// Feed appends a chunk of bytes received from the transport.
// ByteStream makes its own copy of p, so the caller may reuse the slice.
// Feeding after End or Fail is ignored.
func (s *ByteStream) Feed(p []byte) {
	if len(p) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended || s.err != nil {
		return
	}

	chunk := make([]byte, len(p))
	copy(chunk, p)
	s.chunks.Push(chunk)
	s.buffered += len(chunk)

	s.drain()
}

// End signals that the transport closed cleanly. Pending reads that can still
// be satisfied from buffered bytes complete normally; reads needing more
// bytes than remain fail with ErrTruncatedStream.
func (s *ByteStream) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ended = true
	s.drain()
}

// Fail signals a transport error. Every pending read fails immediately with
// err, and all future reads fail with it as well; buffered bytes are no
// longer served.
func (s *ByteStream) Fail(err error) {
	if err == nil {
		err = ErrStreamFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err == nil {
		s.err = err
	}
	s.drain()
}

// Buffered returns the number of bytes currently buffered.
func (s *ByteStream) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buffered
}

// ReadExact blocks until exactly n bytes are available and returns them.
//
// ReadExact(0) returns an empty slice immediately without queuing. Once the
// stream has failed, every call returns the failure error; after a clean End,
// reads that cannot be satisfied from the remaining buffered bytes return
// ErrTruncatedStream.
func (s *ByteStream) ReadExact(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeRead, n)
	}

	s.mu.Lock()

	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return nil, err
	}

	if n == 0 {
		s.mu.Unlock()
		return []byte{}, nil
	}

	w := &readWaiter{n: n, ch: make(chan readResult, 1)}
	s.waiters.Push(w)
	s.drain()
	s.mu.Unlock()

	res := <-w.ch

	return res.data, res.err
}

// drain serves waiters from the head of the queue while they can be resolved.
// It must be called with s.mu held; waiter channels are buffered so resolving
// never blocks.
func (s *ByteStream) drain() {
	for {
		w, ok := s.waiters.Peek()
		if !ok {
			return
		}

		switch {
		case s.err != nil:
			s.waiters.Pop()
			w.ch <- readResult{err: s.err}

		case s.buffered >= w.n:
			s.waiters.Pop()
			w.ch <- readResult{data: s.take(w.n)}

		case s.ended:
			s.waiters.Pop()
			w.ch <- readResult{err: ErrTruncatedStream}

		default:
			// head waiter needs more bytes than have arrived
			return
		}
	}
}

// take removes exactly n bytes from the front of the chunk queue, splitting
// the head chunk when it only partially satisfies the request.
// It must be called with s.mu held and s.buffered >= n.
func (s *ByteStream) take(n int) []byte {
	out := make([]byte, 0, n)

	for n > 0 {
		chunk, _ := s.chunks.Peek()
		if len(chunk) <= n {
			s.chunks.Pop()
			out = append(out, chunk...)
			n -= len(chunk)
			s.buffered -= len(chunk)
		} else {
			out = append(out, chunk[:n]...)
			s.chunks.ReplaceHead(chunk[n:])
			s.buffered -= n
			n = 0
		}
	}

	return out
}
