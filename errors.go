package descent

import (
	"errors"
	"fmt"

	"github.com/golangsnmp/descent/internal/lexer"
	"github.com/golangsnmp/descent/internal/types"
)

// Parse failure causes. A *ParseError unwraps to exactly one of these.
var (
	ErrEmptyInput      = errors.New("empty input")
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrUnexpectedEnd   = errors.New("unexpected end of input")
	ErrTrailingInput   = errors.New("unexpected trailing input")
)

// ParseError reports input that the grammar could not recognize in full.
type ParseError struct {
	Offset int    // byte offset of the offending token, or input length at end of input
	Line   int    // 1-based
	Column int    // 1-based, in bytes
	Lexeme string // offending token text, empty at end of input
	Err    error  // one of ErrEmptyInput, ErrUnexpectedToken, ErrUnexpectedEnd, ErrTrailingInput
}

func (e *ParseError) Error() string {
	if e.Lexeme == "" {
		return fmt.Sprintf("parse error at %d:%d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse error at %d:%d: %v %q", e.Line, e.Column, e.Err, e.Lexeme)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LexError reports input that could not be tokenized, such as a string
// literal with no closing quote.
type LexError struct {
	Offset  int
	Line    int
	Column  int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Column, e.Message)
}

func newLexError(src []byte, err *lexer.LexError) *LexError {
	pos := types.NewLineIndex(src).Position(err.Span.Start)
	return &LexError{
		Offset:  int(err.Span.Start),
		Line:    pos.Line,
		Column:  pos.Column,
		Message: err.Message,
	}
}

// newParseError locates the token at index pos. An index at or past the
// end of the token sequence reports the end of input.
func newParseError(src []byte, tokens []lexer.Token, pos int, cause error) *ParseError {
	idx := types.NewLineIndex(src)
	if pos >= len(tokens) {
		if cause == ErrUnexpectedToken {
			cause = ErrUnexpectedEnd
		}
		at := idx.Position(types.ByteOffset(len(src)))
		return &ParseError{Offset: len(src), Line: at.Line, Column: at.Column, Err: cause}
	}
	tok := tokens[pos]
	at := idx.Position(tok.Span.Start)
	return &ParseError{
		Offset: int(tok.Span.Start),
		Line:   at.Line,
		Column: at.Column,
		Lexeme: tok.Text,
		Err:    cause,
	}
}
