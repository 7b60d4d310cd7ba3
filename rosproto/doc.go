// Package rosproto implements the wire layer of the RouterOS control-plane API:
// length-prefixed words, terminator-delimited sentences, and the reply model
// the router answers with.
//
// Wire Model:
//   - Word: one length-prefixed UTF-8 byte string, the protocol's atomic unit.
//     The length prefix is a variable 1-5 byte big-endian scheme tagged by the
//     high bits of the first byte.
//   - Sentence: an ordered list of non-empty words terminated by exactly one
//     empty word. An empty sentence (immediate terminator) is a legal no-op.
//   - Reply: a received sentence whose first word classifies it ("!done",
//     "!re", "!trap", "!fatal", "!empty") and whose remaining "=key=value"
//     words form an attribute mapping.
//
// Buffering:
// The ByteStream type decouples protocol decoding from transport chunking.
// A receiver goroutine feeds raw chunks as they arrive from the network and
// the decoder issues exact-size reads that block until satisfied, so word and
// sentence boundaries never depend on how the transport fragmented the bytes.
//
// The package performs no I/O of its own beyond writing encoded sentences to
// an io.Writer; session management, authentication, and transport setup live
// in the rosapi package.
package rosproto
