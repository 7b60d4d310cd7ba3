package rosproto

import "errors"

var (
	// ErrBadLengthTag indicates that a word length prefix carries an
	// unrecognized tag pattern (first byte with the top five bits set).
	// The stream is desynchronized and the session must be aborted.
	ErrBadLengthTag = errors.New("unrecognized word length tag")

	// ErrTruncatedStream indicates that the transport ended while a read
	// still needed more bytes than had arrived.
	ErrTruncatedStream = errors.New("stream closed before enough data arrived")

	// ErrStreamFailed indicates that the byte stream was marked failed and
	// no further reads can succeed.
	ErrStreamFailed = errors.New("byte stream failed")

	// ErrNegativeRead indicates that an exact-size read was requested with
	// a negative byte count.
	ErrNegativeRead = errors.New("negative read size")
)
