package types

import (
	"fmt"
	"sort"
)

// ByteOffset is a byte position in source text.
type ByteOffset uint32

// Span represents a range in source text.
type Span struct {
	Start ByteOffset // inclusive
	End   ByteOffset // exclusive
}

// NewSpan creates a new span.
func NewSpan(start, end ByteOffset) Span {
	return Span{Start: start, End: end}
}

// Len returns the length of the span in bytes.
func (s Span) Len() ByteOffset {
	return s.End - s.Start
}

// Bytes returns the bytes of source covered by the span.
func (s Span) Bytes(source []byte) []byte {
	return source[s.Start:s.End]
}

// Position is a 1-based line and column in source text.
type Position struct {
	Line   int
	Column int
}

// String returns the position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// LineIndex maps byte offsets to line/column positions.
// Columns count bytes, not runes.
type LineIndex struct {
	starts []int // byte offset of the first byte of each line
	size   int
}

// NewLineIndex scans source once and records line starts.
func NewLineIndex(source []byte) *LineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, size: len(source)}
}

// Position returns the line/column of the given offset. Offsets past the
// end of input clamp to the end.
func (x *LineIndex) Position(off ByteOffset) Position {
	o := min(int(off), x.size)
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > o }) - 1
	return Position{Line: line + 1, Column: o - x.starts[line] + 1}
}
