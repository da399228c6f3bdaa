// Package stream provides an immutable cursor over a token sequence.
//
// A Stream is a value: every operation that moves the cursor returns a
// new Stream and leaves the receiver untouched, so grammar rules can try
// an alternative from the same position without undoing anything.
package stream

import (
	"slices"

	"github.com/golangsnmp/descent/internal/lexer"
)

// Stream is a token sequence plus a cursor position.
type Stream struct {
	tokens []lexer.Token
	pos    int
}

// New returns a Stream positioned at the first token. The slice is not
// copied and must not be modified afterwards.
func New(tokens []lexer.Token) Stream {
	return Stream{tokens: tokens}
}

// Pos returns the cursor index.
func (s Stream) Pos() int {
	return s.pos
}

// Len returns the total number of tokens, consumed or not.
func (s Stream) Len() int {
	return len(s.tokens)
}

// Remaining returns the number of unconsumed tokens.
func (s Stream) Remaining() int {
	return len(s.tokens) - s.pos
}

// Done reports whether every token has been consumed.
func (s Stream) Done() bool {
	return s.pos >= len(s.tokens)
}

// Peek returns the token at the cursor. ok is false when the stream is
// exhausted.
func (s Stream) Peek() (tok lexer.Token, ok bool) {
	if s.Done() {
		return lexer.Token{}, false
	}
	return s.tokens[s.pos], true
}

// Advance returns a Stream moved n tokens forward, clamped to the end.
// Negative n is treated as zero.
func (s Stream) Advance(n int) Stream {
	s.pos = min(s.pos+max(n, 0), len(s.tokens))
	return s
}

// Literal matches the token at the cursor against text exactly
// (case-sensitive). On a match it returns the stream advanced by one.
// An exhausted stream never matches.
func (s Stream) Literal(text string) (Stream, bool) {
	tok, ok := s.Peek()
	if !ok || tok.Text != text {
		return s, false
	}
	return s.Advance(1), true
}

// Tokens returns a copy of the unconsumed tokens.
func (s Stream) Tokens() []lexer.Token {
	return slices.Clone(s.tokens[s.pos:])
}
