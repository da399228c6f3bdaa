package lexer

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/golangsnmp/descent/internal/types"
)

// LexError is a fatal lexical error. The lexer is otherwise total:
// unrecognized input becomes TokWord and is rejected by the grammar.
type LexError struct {
	Span    types.Span
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Span.Start, e.Message)
}

// Lexer tokenizes grammar input text.
type Lexer struct {
	source []byte
	pos    int
	types.Logger
}

// New returns a Lexer that tokenizes the given source bytes.
func New(source []byte, logger *slog.Logger) *Lexer {
	l := &Lexer{
		source: source,
		Logger: types.Logger{L: logger},
	}
	l.Log(slog.LevelDebug, "lexer initialized", slog.Int("bytes", len(source)))
	return l
}

func (l *Lexer) traceToken(tok Token) {
	if l.TraceEnabled() {
		l.Trace("token",
			slog.String("kind", tok.Kind.String()),
			slog.String("text", tok.Text),
			slog.Int("start", int(tok.Span.Start)),
			slog.Int("end", int(tok.Span.End)))
	}
}

// Tokenize consumes all source text and returns the token sequence.
// Whitespace produces no tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	estimatedTokens := max(len(l.source)/4, 16)
	tokens := make([]Token, 0, estimatedTokens)
	for tok, err := range l.All() {
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	l.Log(slog.LevelDebug, "tokenization complete", slog.Int("tokens", len(tokens)))
	return tokens, nil
}

// All returns the remaining tokens as a lazy sequence. Iteration stops
// after the first error.
func (l *Lexer) All() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for {
			tok, ok, err := l.NextToken()
			if err != nil {
				yield(Token{}, err)
				return
			}
			if !ok || !yield(tok, nil) {
				return
			}
		}
	}
}

// NextToken advances the lexer and returns the next token.
// Returns ok=false when all input is consumed.
func (l *Lexer) NextToken() (tok Token, ok bool, err error) {
	l.skipWhitespace()

	start := l.pos
	b, more := l.peek()
	if !more {
		return Token{}, false, nil
	}

	switch {
	case isPunct(b):
		l.pos++
		return l.token(TokPunct, start), true, nil
	case b == '"':
		return l.scanString()
	case isDigit(b):
		return l.scanNumber(), true, nil
	case b == '-':
		if next, ok := l.peekAt(1); ok && isDigit(next) {
			return l.scanNumber(), true, nil
		}
	}
	return l.scanWord(), true, nil
}

func (l *Lexer) peek() (byte, bool) {
	if l.pos >= len(l.source) {
		return 0, false
	}
	return l.source[l.pos], true
}

func (l *Lexer) peekAt(offset int) (byte, bool) {
	idx := l.pos + offset
	if idx >= len(l.source) {
		return 0, false
	}
	return l.source[idx], true
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) && isSpace(l.source[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) spanFrom(start int) types.Span {
	return types.NewSpan(types.ByteOffset(start), types.ByteOffset(l.pos))
}

func (l *Lexer) token(kind TokenKind, start int) Token {
	span := l.spanFrom(start)
	tok := Token{
		Kind: kind,
		Text: string(span.Bytes(l.source)),
		Span: span,
	}
	l.traceToken(tok)
	return tok
}

// scanString reads a quoted string up to the next unescaped quote.
// A backslash always consumes the following byte.
func (l *Lexer) scanString() (Token, bool, error) {
	start := l.pos
	l.pos++ // consume opening quote

	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case '\\':
			l.pos += 2
		case '"':
			l.pos++
			return l.token(TokString, start), true, nil
		default:
			l.pos++
		}
	}

	l.pos = len(l.source)
	span := l.spanFrom(start)
	l.Log(slog.LevelDebug, "unterminated string", slog.Int("offset", start))
	return Token{}, false, &LexError{Span: span, Message: "unterminated string literal"}
}

// scanNumber reads an optional minus sign followed by digits, dots,
// exponent markers and signs. Validation belongs to the grammar.
func (l *Lexer) scanNumber() Token {
	start := l.pos
	if l.source[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.source) && isNumberByte(l.source[l.pos]) {
		l.pos++
	}
	return l.token(TokNumber, start)
}

func (l *Lexer) scanWord() Token {
	start := l.pos
	for l.pos < len(l.source) {
		b := l.source[l.pos]
		if isSpace(b) || isPunct(b) || b == '"' {
			break
		}
		l.pos++
	}
	return l.token(TokWord, start)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isPunct(b byte) bool {
	switch b {
	case '[', ']', '{', '}', ',', ':':
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isNumberByte(b byte) bool {
	return isDigit(b) || b == '.' || b == 'e' || b == 'E' || b == '+' || b == '-'
}
