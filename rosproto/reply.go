package rosproto

import "strings"

// ReplyType classifies a received sentence by its first word.
type ReplyType uint8

const (
	// UnknownReply indicates a first word outside the reply vocabulary.
	UnknownReply ReplyType = iota
	// DoneReply ("!done") acknowledges a command and ends the exchange.
	DoneReply
	// DataReply ("!re") carries one record of command output.
	DataReply
	// TrapReply ("!trap") reports a command failure; the exchange continues
	// until the closing "!done".
	TrapReply
	// FatalReply ("!fatal") reports a failure after which the device closes
	// the connection.
	FatalReply
	// EmptyReply ("!empty") ends the exchange with no result.
	EmptyReply
)

// String returns the wire form of the reply type.
func (rt ReplyType) String() string {
	switch rt {
	case DoneReply:
		return "!done"
	case DataReply:
		return "!re"
	case TrapReply:
		return "!trap"
	case FatalReply:
		return "!fatal"
	case EmptyReply:
		return "!empty"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for reply types that end a command exchange.
func (rt ReplyType) IsTerminal() bool { return rt == DoneReply || rt == EmptyReply }

// IsError returns true for reply types that report a failure.
func (rt ReplyType) IsError() bool { return rt == TrapReply || rt == FatalReply }

// replyTypeOf maps a first word to its ReplyType.
func replyTypeOf(word string) ReplyType {
	switch word {
	case "!done":
		return DoneReply
	case "!re":
		return DataReply
	case "!trap":
		return TrapReply
	case "!fatal":
		return FatalReply
	case "!empty":
		return EmptyReply
	default:
		return UnknownReply
	}
}

// Reply is a parsed inbound sentence: a reply type tag plus the attribute
// mapping built from the remaining words.
type Reply struct {
	// Type classifies the sentence by its first word.
	Type ReplyType

	// Tag is the raw first word, preserved for unknown reply types.
	Tag string

	// Attrs maps attribute keys to values. Keys retain the leading "=" of
	// the wire form (use Attr for bare-name lookup). Duplicate keys within
	// one sentence resolve last-write-wins; the protocol does not guarantee
	// uniqueness.
	Attrs map[string]string
}

// ParseReply parses a non-empty sentence into a Reply.
// It returns nil for an empty sentence, which callers skip as a no-op frame.
func ParseReply(words []string) *Reply {
	if len(words) == 0 {
		return nil
	}

	r := &Reply{
		Type:  replyTypeOf(words[0]),
		Tag:   words[0],
		Attrs: make(map[string]string, len(words)-1),
	}

	for _, w := range words[1:] {
		k, v := ParseAttribute(w)
		r.Attrs[k] = v
	}

	return r
}

// ParseAttribute splits one attribute word into its key and value.
//
// The key runs up to the second "=" in the word — the search starts after
// position 0, so the leading "=" of the wire form stays part of the key.
// A word without a second "=" maps to the whole word with an empty value.
func ParseAttribute(word string) (key, value string) {
	if len(word) < 2 {
		return word, ""
	}

	idx := strings.Index(word[1:], "=")
	if idx < 0 {
		return word, ""
	}

	return word[:idx+1], word[idx+2:]
}

// Attr looks up an attribute by its bare name, without the leading "=".
func (r *Reply) Attr(name string) (string, bool) {
	v, ok := r.Attrs["="+name]
	return v, ok
}

// Message returns the device-supplied "message" attribute of an error reply,
// or the empty string if absent.
func (r *Reply) Message() string {
	v, _ := r.Attr("message")
	return v
}
