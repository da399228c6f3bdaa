// Package descent parses JSON text with a small recursive-descent grammar
// engine.
//
// Input is tokenized, then an ordered-clause grammar is evaluated against an
// immutable token cursor. The first clause that matches wins; there is no
// backtracking across a committed clause. The whole input must be consumed.
//
//	v, err := descent.Parse(`{"a": [1, 2]}`)
//	if err != nil {
//	    var perr *descent.ParseError
//	    if errors.As(err, &perr) {
//	        fmt.Println(perr.Line, perr.Column, perr.Lexeme)
//	    }
//	}
//	a, _ := v.Get("a")
//	fmt.Println(a.Len())
package descent

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/golangsnmp/descent/internal/jsonrules"
	"github.com/golangsnmp/descent/internal/lexer"
	"github.com/golangsnmp/descent/internal/stream"
	"github.com/golangsnmp/descent/internal/types"
)

// ErrInputTooLarge is returned when input exceeds the configured maximum size.
var ErrInputTooLarge = errors.New("input exceeds maximum size")

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-item iteration logging (tokens, clause attempts).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = types.LevelTrace

// ParseOption configures Parse, ParseBytes, ParseReader and ParseAll.
type ParseOption func(*parseConfig)

type parseConfig struct {
	logger   *slog.Logger
	trace    io.Writer
	maxInput int
}

func newParseConfig(opts []ParseOption) parseConfig {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger for debug/trace output.
// If not set, no logging occurs (zero overhead).
func WithLogger(logger *slog.Logger) ParseOption {
	return func(c *parseConfig) { c.logger = logger }
}

// WithTrace writes the token sequence to w before parsing, one
// "offset kind lexeme" line per token. Tracing never changes the result;
// write errors are ignored. ParseAll buffers each document's trace and
// writes whole blocks, so w is never written from two goroutines at once.
func WithTrace(w io.Writer) ParseOption {
	return func(c *parseConfig) { c.trace = w }
}

// WithMaxInputSize rejects inputs larger than n bytes with ErrInputTooLarge.
// Zero or negative means unlimited.
func WithMaxInputSize(n int) ParseOption {
	return func(c *parseConfig) { c.maxInput = n }
}

// Parse parses JSON text into a Value.
//
// A lexical failure returns *LexError. If no value can be recognized at the
// start of the input, or tokens remain after the value, Parse returns
// *ParseError. No partial value is ever returned.
func Parse(text string, opts ...ParseOption) (Value, error) {
	return parseSource([]byte(text), newParseConfig(opts))
}

// ParseBytes is like Parse but takes the input as bytes.
func ParseBytes(src []byte, opts ...ParseOption) (Value, error) {
	return parseSource(src, newParseConfig(opts))
}

// ParseReader reads all of r and parses it. When a maximum input size is
// set, at most that many bytes plus one are read.
func ParseReader(r io.Reader, opts ...ParseOption) (Value, error) {
	cfg := newParseConfig(opts)
	src, err := ReadLimited(r, cfg.maxInput)
	if err != nil {
		return Value{}, err
	}
	return parseSource(src, cfg)
}

// ReadLimited reads all of r. When limit is positive, input longer than
// limit bytes fails with ErrInputTooLarge after reading at most limit+1
// bytes.
func ReadLimited(r io.Reader, limit int) ([]byte, error) {
	if limit > 0 {
		r = io.LimitReader(r, int64(limit)+1)
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if limit > 0 && len(src) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, limit)
	}
	return src, nil
}

func parseSource(src []byte, cfg parseConfig) (Value, error) {
	if cfg.maxInput > 0 && len(src) > cfg.maxInput {
		return Value{}, fmt.Errorf("%w: %d bytes (limit %d)", ErrInputTooLarge, len(src), cfg.maxInput)
	}
	log := types.Logger{L: cfg.logger}

	tokens, err := lexer.New(src, types.Component(cfg.logger, "lexer")).Tokenize()
	if err != nil {
		var lexErr *lexer.LexError
		if errors.As(err, &lexErr) {
			return Value{}, newLexError(src, lexErr)
		}
		return Value{}, err
	}
	if cfg.trace != nil {
		writeTrace(cfg.trace, tokens)
	}

	g := jsonrules.Grammar()
	ev := g.Evaluator(types.Component(cfg.logger, "grammar"))
	start := stream.New(tokens)
	out := ev.Evaluate(jsonrules.TopRule, start)

	if !out.Matched {
		log.Log(slog.LevelDebug, "no value recognized",
			slog.Int("attempts", ev.Attempts()),
			slog.Int("furthest", ev.Furthest()))
		if len(tokens) == 0 {
			return Value{}, newParseError(src, tokens, 0, ErrEmptyInput)
		}
		return Value{}, newParseError(src, tokens, ev.Furthest(), ErrUnexpectedToken)
	}
	if !out.Rest.Done() {
		log.Log(slog.LevelDebug, "trailing tokens after value",
			slog.Int("consumed", out.Rest.Pos()),
			slog.Int("remaining", out.Rest.Remaining()))
		return Value{}, newParseError(src, tokens, out.Rest.Pos(), ErrTrailingInput)
	}

	log.Log(slog.LevelDebug, "parse complete",
		slog.Int("tokens", len(tokens)),
		slog.Int("attempts", ev.Attempts()),
		slog.String("kind", out.Value.Value.Kind().String()))
	return out.Value.Value, nil
}

func writeTrace(w io.Writer, tokens []lexer.Token) {
	for _, tok := range tokens {
		if _, err := fmt.Fprintf(w, "%d %s %s\n", tok.Span.Start, tok.Kind, tok.Text); err != nil {
			return
		}
	}
}

// GrammarText returns the JSON grammar, one rule per line with clauses
// separated by "|". Continuation rules carry the "-tail" suffix.
func GrammarText() string {
	return jsonrules.Grammar().String()
}
