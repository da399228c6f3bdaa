package descent

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golangsnmp/descent/value"
)

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"true", value.Bool(true)},
		{"false", value.Bool(false)},
		{"null", value.Null()},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			v, err := Parse(tc.input)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(v), "got %s", v)
			assert.Equal(t, tc.want.Kind(), v.Kind())
		})
	}
}

func TestParseNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"15.67", 15.67},
		{"1000", 1000.0},
		{"0", 0},
		{"-3", -3},
		{"2.5e3", 2500},
		{"1E-2", 0.01},
		{"007", 7},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			v, err := Parse(tc.input)
			require.NoError(t, err)
			n, ok := v.AsNumber()
			require.True(t, ok, "kind %s", v.Kind())
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestParseStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`""`, ""},
		{`"hello"`, "hello"},
		{`"a b  c"`, "a b  c"},
		{`"quote \" inside"`, `quote " inside`},
		{`"tab\tnew\nline"`, "tab\tnew\nline"},
		{`"é😀"`, "é😀"},
		{`"{not: [an, object]}"`, "{not: [an, object]}"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			v, err := Parse(tc.input)
			require.NoError(t, err)
			s, ok := v.AsString()
			require.True(t, ok)
			assert.Equal(t, tc.want, s)
		})
	}
}

func TestParseEmptyContainers(t *testing.T) {
	v, err := Parse("[]")
	require.NoError(t, err)
	assert.Equal(t, KindArray, v.Kind())
	assert.Equal(t, 0, v.Len())

	v, err = Parse("{}")
	require.NoError(t, err)
	assert.Equal(t, KindObject, v.Kind())
	assert.Equal(t, 0, v.Len())
	assert.Empty(t, v.Keys())
}

func TestParseObject(t *testing.T) {
	v, err := Parse(`{ "a" : 1, "b" : 2 }`)
	require.NoError(t, err)
	want := value.Object(map[string]Value{
		"a": value.Number(1),
		"b": value.Number(2),
	})
	assert.True(t, want.Equal(v), "got %s", v)
	assert.Equal(t, []string{"a", "b"}, v.Keys())
}

func TestParseDuplicateKeysLastWins(t *testing.T) {
	v, err := Parse(`{"a":1,"a":2}`)
	require.NoError(t, err)
	require.Equal(t, 1, v.Len())
	a, ok := v.Get("a")
	require.True(t, ok)
	n, _ := a.AsNumber()
	assert.Equal(t, 2.0, n)
}

func TestParseStructuralRoundTrip(t *testing.T) {
	const input = "[1, 2, [3, 4], 5, [6, [7, [8], 9], 10], 11]"
	v, err := Parse(input)
	require.NoError(t, err)

	assert.Equal(t, bracketDepth(input), v.Depth())
	assert.Equal(t, 11, countLeaves(v))
	assert.Equal(t, "[1,2,[3,4],5,[6,[7,[8],9],10],11]", v.String())

	want := value.Array(
		value.Number(1), value.Number(2),
		value.Array(value.Number(3), value.Number(4)),
		value.Number(5),
		value.Array(
			value.Number(6),
			value.Array(value.Number(7), value.Array(value.Number(8)), value.Number(9)),
			value.Number(10),
		),
		value.Number(11),
	)
	assert.True(t, want.Equal(v))
}

func TestParseNestingMirrorsBrackets(t *testing.T) {
	inputs := []string{
		`1`,
		`[]`,
		`[[]]`,
		`{"a": {"b": {"c": []}}}`,
		`[{"x": [1, {"y": null}]}, 2]`,
		`{"s": "[[[not brackets]]]"}`,
		strings.Repeat("[", 64) + strings.Repeat("]", 64),
	}
	for _, input := range inputs {
		v, err := Parse(input)
		require.NoError(t, err, input)
		assert.Equal(t, bracketDepth(input), v.Depth(), input)
	}
}

func TestParseIdempotent(t *testing.T) {
	const input = `{"list": [1, "two", {"three": [true, false, null]}], "n": -0.5}`
	first, err := Parse(input)
	require.NoError(t, err)
	second, err := Parse(input)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
	assert.Equal(t, first.String(), second.String())

	again, err := Parse(first.String())
	require.NoError(t, err)
	assert.True(t, first.Equal(again))
}

func TestParseConcurrent(t *testing.T) {
	const input = `[1, {"a": [2, 3]}, "x"]`
	want, err := Parse(input)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := Parse(input)
			if err == nil && !v.Equal(want) {
				err = errors.New("value mismatch")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestParseDeepMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cause  error
		offset int
	}{
		{"unclosed arrays", strings.Repeat("[", 64), ErrUnexpectedEnd, 64},
		{"bad word at the bottom", strings.Repeat("[", 40) + "x" + strings.Repeat("]", 40), ErrUnexpectedToken, 40},
		{"unclosed objects", strings.Repeat(`{"k":`, 48), ErrUnexpectedEnd, 48 * 5},
		{"missing colon deep down", strings.Repeat(`{"k":[`, 30) + `{"k" 1}` + strings.Repeat("]}", 30), ErrUnexpectedToken, 30*6 + 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan error, 1)
			go func() {
				_, err := Parse(tt.input)
				done <- err
			}()
			var err error
			select {
			case err = <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("parse of malformed nested input did not finish")
			}
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.ErrorIs(t, err, tt.cause)
			assert.Equal(t, tt.offset, pe.Offset)
		})
	}
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(strings.NewReader("12345"), 5)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))

	_, err = ReadLimited(strings.NewReader("123456"), 5)
	assert.ErrorIs(t, err, ErrInputTooLarge)

	data, err = ReadLimited(strings.NewReader("123456"), 0)
	require.NoError(t, err)
	assert.Len(t, data, 6, "zero limit reads everything")
}

func TestParseTrailingInput(t *testing.T) {
	_, err := Parse("{} garbage")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, ErrTrailingInput)
	assert.Equal(t, 3, perr.Offset)
	assert.Equal(t, "garbage", perr.Lexeme)
	assert.Equal(t, 1, perr.Line)
	assert.Equal(t, 4, perr.Column)
	assert.Contains(t, err.Error(), "garbage")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cause  error
		offset int
		lexeme string
	}{
		{"empty", "", ErrEmptyInput, 0, ""},
		{"whitespace only", "  \n ", ErrEmptyInput, 4, ""},
		{"bare word", "hello", ErrUnexpectedToken, 0, "hello"},
		{"closing bracket", "]", ErrUnexpectedToken, 0, "]"},
		{"unclosed array", "[1, 2", ErrUnexpectedEnd, 5, ""},
		{"double comma", "[1, 2,, 3]", ErrUnexpectedToken, 6, ","},
		{"trailing comma", "[1, 2,]", ErrUnexpectedToken, 6, "]"},
		{"missing colon", `{"a" 1}`, ErrUnexpectedToken, 5, "1"},
		{"non-string key", `{1: 2}`, ErrUnexpectedToken, 1, "1"},
		{"two values", "1 2", ErrTrailingInput, 2, "2"},
		{"bad escape", `"\q"`, ErrUnexpectedToken, 0, `"\q"`},
		{"number overflow", "1e999", ErrUnexpectedToken, 0, "1e999"},
		{"malformed number", "1.2.3", ErrUnexpectedToken, 0, "1.2.3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Parse(tc.input)
			require.Error(t, err)
			assert.True(t, v.IsNull(), "no partial value")

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.ErrorIs(t, err, tc.cause)
			assert.Equal(t, tc.offset, perr.Offset)
			assert.Equal(t, tc.lexeme, perr.Lexeme)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("{\n  \"a\": 1,\n  \"b\" 2\n}")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Line)
	assert.Equal(t, 7, perr.Column)
	assert.Equal(t, "2", perr.Lexeme)
	assert.Equal(t, `parse error at 3:7: unexpected token "2"`, perr.Error())
}

func TestParseUnterminatedString(t *testing.T) {
	_, err := Parse(`{"a": "open}`)
	require.Error(t, err)

	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, 6, lexErr.Offset)
	assert.Equal(t, 7, lexErr.Column)

	var perr *ParseError
	assert.False(t, errors.As(err, &perr), "lex failure is not a parse failure")
}

func TestParseMaxInputSize(t *testing.T) {
	_, err := Parse(`[1, 2, 3]`, WithMaxInputSize(4))
	assert.ErrorIs(t, err, ErrInputTooLarge)

	v, err := Parse(`[1]`, WithMaxInputSize(4))
	require.NoError(t, err)
	assert.Equal(t, 1, v.Len())

	_, err = ParseReader(strings.NewReader(`[1, 2, 3]`), WithMaxInputSize(4))
	assert.ErrorIs(t, err, ErrInputTooLarge)
}

func TestParseReader(t *testing.T) {
	v, err := ParseReader(strings.NewReader(`{"k": "v"}`))
	require.NoError(t, err)
	k, ok := v.Get("k")
	require.True(t, ok)
	s, _ := k.AsString()
	assert.Equal(t, "v", s)
}

func TestParseBytes(t *testing.T) {
	v, err := ParseBytes([]byte(`[true]`))
	require.NoError(t, err)
	assert.Equal(t, "[true]", v.String())
}

func TestWithTrace(t *testing.T) {
	var buf bytes.Buffer
	traced, err := Parse(`{"a": [1]}`, WithTrace(&buf))
	require.NoError(t, err)
	plain, err := Parse(`{"a": [1]}`)
	require.NoError(t, err)
	assert.True(t, plain.Equal(traced), "trace must not change the result")

	want := strings.Join([]string{
		`0 PUNCT {`,
		`1 STRING "a"`,
		`4 PUNCT :`,
		`6 PUNCT [`,
		`7 NUMBER 1`,
		`8 PUNCT ]`,
		`9 PUNCT }`,
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWithTraceOnFailure(t *testing.T) {
	var buf bytes.Buffer
	_, err := Parse(`{} garbage`, WithTrace(&buf))
	require.Error(t, err)
	assert.Equal(t, "0 PUNCT {\n1 PUNCT }\n3 WORD garbage\n", buf.String())
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))

	_, err := Parse(`[1]`, WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "component=lexer")
	assert.Contains(t, out, "component=grammar")
	assert.Contains(t, out, "parse complete")
}

func TestTokenize(t *testing.T) {
	toks, err := Tokenize(`{"a": [1, true]}`)
	require.NoError(t, err)

	want := []Token{
		{Kind: TokPunct, Text: "{", Offset: 0},
		{Kind: TokString, Text: `"a"`, Offset: 1},
		{Kind: TokPunct, Text: ":", Offset: 4},
		{Kind: TokPunct, Text: "[", Offset: 6},
		{Kind: TokNumber, Text: "1", Offset: 7},
		{Kind: TokPunct, Text: ",", Offset: 8},
		{Kind: TokWord, Text: "true", Offset: 10},
		{Kind: TokPunct, Text: "]", Offset: 14},
		{Kind: TokPunct, Text: "}", Offset: 15},
	}
	assert.Equal(t, want, toks)
	assert.True(t, toks[6].IsKeyword())
	assert.False(t, toks[1].IsKeyword(), "quoted text is never a keyword")

	toks, err = Tokenize("   ")
	require.NoError(t, err)
	assert.Empty(t, toks)

	_, err = Tokenize(`"open`)
	var lexErr *LexError
	assert.ErrorAs(t, err, &lexErr)
}

func bracketDepth(s string) int {
	depth, deepest := 0, 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '[' || c == '{':
			depth++
			deepest = max(deepest, depth)
		case c == ']' || c == '}':
			depth--
		}
	}
	return deepest
}

func countLeaves(v Value) int {
	switch v.Kind() {
	case KindArray:
		n := 0
		for _, e := range v.Elements() {
			n += countLeaves(e)
		}
		return n
	case KindObject:
		n := 0
		for _, k := range v.Keys() {
			e, _ := v.Get(k)
			n += countLeaves(e)
		}
		return n
	}
	return 1
}

func TestGrammarText(t *testing.T) {
	text := GrammarText()
	for _, rule := range []string{"value", "elements", "elements-tail", "members", "members-tail", "member", "string", "number"} {
		assert.Contains(t, text, rule)
	}
	assert.True(t, strings.HasPrefix(text, "value"), "top rule first")
}
