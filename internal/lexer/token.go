// Package lexer provides tokenization for grammar input text.
package lexer

import (
	"github.com/golangsnmp/descent/internal/types"
)

// Token is a classified lexeme with its source span.
type Token struct {
	Kind TokenKind
	Text string
	Span types.Span
}

// NewToken creates a new token.
func NewToken(kind TokenKind, text string, span types.Span) Token {
	return Token{Kind: kind, Text: text, Span: span}
}

// TokenKind identifies a token class.
type TokenKind int

const (
	// TokPunct is a single structural character: [ ] { } , :
	TokPunct TokenKind = iota
	// TokString is a double-quoted string literal, quotes included.
	TokString
	// TokNumber is a numeric literal.
	TokNumber
	// TokWord is a bare word: keywords (true, false, null) and any
	// other run of unrecognized characters.
	TokWord
)

// String returns the kind's display name.
func (k TokenKind) String() string {
	switch k {
	case TokPunct:
		return "PUNCT"
	case TokString:
		return "STRING"
	case TokNumber:
		return "NUMBER"
	case TokWord:
		return "WORD"
	default:
		return "UNKNOWN"
	}
}

// Keywords are the bare words with a fixed meaning in the JSON grammar.
var Keywords = []string{"true", "false", "null"}

// IsKeyword reports whether text is one of Keywords.
func IsKeyword(text string) bool {
	switch text {
	case "true", "false", "null":
		return true
	}
	return false
}
