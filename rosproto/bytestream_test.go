package rosproto

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestByteStreamChunkIndependence(t *testing.T) {
	require := require.New(t)

	// one chunk of two bytes
	joined := NewByteStream()
	joined.Feed([]byte{0x01, 0x41})

	got, err := joined.ReadExact(2)
	require.NoError(err)
	require.Equal([]byte{0x01, 0x41}, got)

	// the same bytes in two single-byte chunks
	split := NewByteStream()
	split.Feed([]byte{0x01})
	split.Feed([]byte{0x41})

	got, err = split.ReadExact(2)
	require.NoError(err)
	require.Equal([]byte{0x01, 0x41}, got)
}

func TestByteStreamSplitsHeadChunk(t *testing.T) {
	require := require.New(t)

	s := NewByteStream()
	s.Feed([]byte{1, 2, 3, 4, 5})

	got, err := s.ReadExact(2)
	require.NoError(err)
	require.Equal([]byte{1, 2}, got)
	require.Equal(3, s.Buffered())

	got, err = s.ReadExact(3)
	require.NoError(err)
	require.Equal([]byte{3, 4, 5}, got)
	require.Equal(0, s.Buffered())
}

func TestByteStreamZeroRead(t *testing.T) {
	require := require.New(t)

	s := NewByteStream()

	// resolves immediately without queuing, even with nothing buffered
	got, err := s.ReadExact(0)
	require.NoError(err)
	require.Empty(got)

	_, err = s.ReadExact(-1)
	require.ErrorIs(err, ErrNegativeRead)
}

func TestByteStreamBlocksUntilFed(t *testing.T) {
	require := require.New(t)

	s := NewByteStream()

	done := make(chan []byte, 1)
	go func() {
		got, err := s.ReadExact(3)
		require.NoError(err)
		done <- got
	}()

	select {
	case <-done:
		t.Fatal("read resolved before enough bytes arrived")
	case <-time.After(20 * time.Millisecond):
	}

	s.Feed([]byte{1})
	s.Feed([]byte{2, 3})

	select {
	case got := <-done:
		require.Equal([]byte{1, 2, 3}, got)
	case <-time.After(time.Second):
		t.Fatal("read did not resolve after bytes arrived")
	}
}

func TestByteStreamEarlyClose(t *testing.T) {
	require := require.New(t)

	s := NewByteStream()
	s.Feed([]byte{0x01, 0x02})

	errCh := make(chan error, 1)
	go func() {
		_, err := s.ReadExact(5)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	s.End()

	select {
	case err := <-errCh:
		require.ErrorIs(err, ErrTruncatedStream)
	case <-time.After(time.Second):
		t.Fatal("pending read hung after End")
	}
}

func TestByteStreamEndServesBufferedBytes(t *testing.T) {
	require := require.New(t)

	s := NewByteStream()
	s.Feed([]byte{1, 2, 3})
	s.End()

	// reads satisfiable from the buffer still succeed after a clean end
	got, err := s.ReadExact(3)
	require.NoError(err)
	require.Equal([]byte{1, 2, 3}, got)

	_, err = s.ReadExact(1)
	require.ErrorIs(err, ErrTruncatedStream)
}

func TestByteStreamFail(t *testing.T) {
	require := require.New(t)

	failure := errors.New("connection reset")

	s := NewByteStream()
	s.Feed([]byte{1, 2, 3})

	errCh := make(chan error, 1)
	go func() {
		_, err := s.ReadExact(10)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	s.Fail(failure)

	select {
	case err := <-errCh:
		require.ErrorIs(err, failure)
	case <-time.After(time.Second):
		t.Fatal("pending read hung after Fail")
	}

	// once failed, reads never succeed again, buffered bytes included
	_, err := s.ReadExact(1)
	require.ErrorIs(err, failure)

	_, err = s.ReadExact(0)
	require.ErrorIs(err, failure)
}

func TestByteStreamWaiterOrder(t *testing.T) {
	require := require.New(t)

	s := NewByteStream()

	first := make(chan []byte, 1)
	go func() {
		got, err := s.ReadExact(4)
		require.NoError(err)
		first <- got
	}()

	// let the large read queue up before submitting the small one
	time.Sleep(20 * time.Millisecond)

	second := make(chan []byte, 1)
	go func() {
		got, err := s.ReadExact(1)
		require.NoError(err)
		second <- got
	}()

	time.Sleep(20 * time.Millisecond)
	s.Feed([]byte{1, 2})

	// two buffered bytes satisfy the later, smaller request, but it must
	// not be served ahead of the earlier, larger one
	select {
	case <-second:
		t.Fatal("smaller read overtook an earlier larger read")
	case <-time.After(20 * time.Millisecond):
	}

	s.Feed([]byte{3, 4, 5})

	select {
	case got := <-first:
		require.Equal([]byte{1, 2, 3, 4}, got)
	case <-time.After(time.Second):
		t.Fatal("first read did not resolve")
	}

	select {
	case got := <-second:
		require.Equal([]byte{5}, got)
	case <-time.After(time.Second):
		t.Fatal("second read did not resolve")
	}
}
