package rosproto

import (
	"fmt"
	"unicode/utf8"
)

// Word length prefix boundaries. Lengths below each boundary use the
// corresponding prefix width; see AppendLength.
const (
	lenMax1 = 0x80
	lenMax2 = 0x4000
	lenMax3 = 0x200000
	lenMax4 = 0x10000000
)

// AppendLength appends the variable-width wire encoding of a word length to
// dst and returns the extended slice.
//
// The scheme is big-endian with the count of prefix bytes tagged by the
// leading bits of the first byte:
//
//	<0x80       1 byte   0xxxxxxx
//	<0x4000     2 bytes  value | 0x8000
//	<0x200000   3 bytes  value | 0xC00000
//	<0x10000000 4 bytes  value | 0xE0000000
//	otherwise   5 bytes  0xF0 then the 4-byte big-endian value
func AppendLength(dst []byte, l uint32) []byte {
	switch {
	case l < lenMax1:
		return append(dst, byte(l))
	case l < lenMax2:
		v := l | 0x8000
		return append(dst, byte(v>>8), byte(v))
	case l < lenMax3:
		v := l | 0xC00000
		return append(dst, byte(v>>16), byte(v>>8), byte(v))
	case l < lenMax4:
		v := l | 0xE0000000
		return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	default:
		return append(dst, 0xF0, byte(l>>24), byte(l>>16), byte(l>>8), byte(l))
	}
}

// EncodeLength returns the wire encoding of a word length.
func EncodeLength(l uint32) []byte {
	return AppendLength(make([]byte, 0, 5), l)
}

// AppendWord appends the wire form of one word (length prefix then payload
// bytes) to dst and returns the extended slice.
func AppendWord(dst []byte, word string) []byte {
	dst = AppendLength(dst, uint32(len(word)))
	return append(dst, word...)
}

// ReadLength decodes one word length prefix from the stream.
//
// It reads the first byte, inspects its high bits to determine how many
// further bytes belong to the prefix, masks off the tag bits, and
// reconstructs the length. A first byte with the top five bits all set has
// no assigned meaning and fails with ErrBadLengthTag.
func ReadLength(s *ByteStream) (uint32, error) {
	b, err := s.ReadExact(1)
	if err != nil {
		return 0, err
	}

	head := b[0]

	var rest int
	var l uint32

	switch {
	case head&0x80 == 0x00:
		return uint32(head), nil
	case head&0xC0 == 0x80:
		rest, l = 1, uint32(head&0x3F)
	case head&0xE0 == 0xC0:
		rest, l = 2, uint32(head&0x1F)
	case head&0xF0 == 0xE0:
		rest, l = 3, uint32(head&0x0F)
	case head&0xF8 == 0xF0:
		// the full 32-bit length follows; the low bits of the tag byte are unused
		rest, l = 4, 0
	default:
		return 0, fmt.Errorf("%w: first byte 0x%02X", ErrBadLengthTag, head)
	}

	tail, err := s.ReadExact(rest)
	if err != nil {
		return 0, err
	}

	for _, tb := range tail {
		l = l<<8 | uint32(tb)
	}

	return l, nil
}

// ReadWord decodes one word (length prefix then payload) from the stream.
// The empty word acts as the sentence terminator at the layer above.
func ReadWord(s *ByteStream) (string, error) {
	l, err := ReadLength(s)
	if err != nil {
		return "", err
	}

	if l == 0 {
		return "", nil
	}

	payload, err := s.ReadExact(int(l))
	if err != nil {
		return "", err
	}

	return DecodeText(payload), nil
}

// DecodeText interprets word payload bytes as UTF-8 text.
//
// Devices occasionally emit attribute values that are not valid UTF-8
// (binary option blobs, legacy code pages). Those payloads decode with a
// byte-preserving fallback: each byte becomes the rune of the same value,
// so RawBytes can recover the original byte sequence.
func DecodeText(p []byte) string {
	if utf8.Valid(p) {
		return string(p)
	}

	runes := make([]rune, len(p))
	for i, b := range p {
		runes[i] = rune(b)
	}

	return string(runes)
}

// RawBytes recovers the original payload bytes of a word decoded by
// DecodeText. For ordinary UTF-8 words it returns the UTF-8 encoding; for
// fallback-decoded words it maps each rune back to its single source byte.
func RawBytes(word string) []byte {
	for _, r := range word {
		if r > 0xFF {
			return []byte(word)
		}
	}

	out := make([]byte, 0, len(word))
	for _, r := range word {
		out = append(out, byte(r))
	}

	return out
}
