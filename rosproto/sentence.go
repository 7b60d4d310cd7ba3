package rosproto

import "io"

// SentenceWriter encodes outbound sentences onto a transport writer.
//
// SentenceWriter is not goroutine-safe; a session serializes all writes.
type SentenceWriter struct {
	w io.Writer
}

// NewSentenceWriter creates a SentenceWriter on top of w.
func NewSentenceWriter(w io.Writer) *SentenceWriter {
	return &SentenceWriter{w: w}
}

// WriteSentence writes each word in order (length prefix then payload)
// followed by one empty word as the sentence terminator.
//
// It returns the number of non-terminator words written. The whole sentence
// is encoded into a single buffer and written with one Write call so a
// sentence is never interleaved with another writer's bytes.
func (sw *SentenceWriter) WriteSentence(words []string) (int, error) {
	size := 1 // terminator
	for _, w := range words {
		size += len(w) + 5
	}

	buf := make([]byte, 0, size)
	for _, w := range words {
		buf = AppendWord(buf, w)
	}
	buf = AppendLength(buf, 0)

	if _, err := sw.w.Write(buf); err != nil {
		return 0, err
	}

	return len(words), nil
}

// SentenceReader decodes inbound sentences from a ByteStream.
//
// SentenceReader is not goroutine-safe; a session performs all reads from a
// single logical task.
type SentenceReader struct {
	s *ByteStream
}

// NewSentenceReader creates a SentenceReader on top of s.
func NewSentenceReader(s *ByteStream) *SentenceReader {
	return &SentenceReader{s: s}
}

// ReadSentence reads words until the empty terminator word and returns the
// accumulated sentence. The terminator is consumed but never included.
//
// An empty sentence (immediate terminator) returns a zero-length slice;
// whether to skip it is the caller's decision.
func (sr *SentenceReader) ReadSentence() ([]string, error) {
	var words []string

	for {
		word, err := ReadWord(sr.s)
		if err != nil {
			return nil, err
		}

		if word == "" {
			return words, nil
		}

		words = append(words, word)
	}
}
