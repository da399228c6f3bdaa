package descent

import (
	"errors"

	"github.com/golangsnmp/descent/internal/lexer"
	"github.com/golangsnmp/descent/value"
)

// Type aliases for the public API. Values come from the value subpackage.

// Value is a parsed JSON value.
type Value = value.Value

// Kind identifies the variant held by a Value.
type Kind = value.Kind

// Member is an object key/value pair.
type Member = value.Member

// Value kind constants.
const (
	KindNull   = value.KindNull
	KindBool   = value.KindBool
	KindNumber = value.KindNumber
	KindString = value.KindString
	KindArray  = value.KindArray
	KindObject = value.KindObject
)

// TokenKind classifies a token.
type TokenKind = lexer.TokenKind

// Token kind constants.
const (
	TokPunct  = lexer.TokPunct
	TokString = lexer.TokString
	TokNumber = lexer.TokNumber
	TokWord   = lexer.TokWord
)

// Token is a lexical token with its byte offset in the input.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
}

// IsKeyword reports whether the token is one of the bare words true,
// false or null.
func (t Token) IsKeyword() bool {
	return t.Kind == TokWord && lexer.IsKeyword(t.Text)
}

// Tokenize splits text into tokens without parsing it. Whitespace produces
// no tokens. An unterminated string returns *LexError.
func Tokenize(text string) ([]Token, error) {
	src := []byte(text)
	toks, err := lexer.New(src, nil).Tokenize()
	if err != nil {
		var lexErr *lexer.LexError
		if errors.As(err, &lexErr) {
			return nil, newLexError(src, lexErr)
		}
		return nil, err
	}
	out := make([]Token, len(toks))
	for i, tok := range toks {
		out[i] = Token{Kind: tok.Kind, Text: tok.Text, Offset: int(tok.Span.Start)}
	}
	return out, nil
}
