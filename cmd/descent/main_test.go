package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golangsnmp/descent"
	"github.com/golangsnmp/descent/cmd/internal/cliutil"
)

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{`1`, false},
		{`[1, 2`, true},
		{`[1, 2]`, false},
		{`{"a": {`, true},
		{`"open`, true},
		{`"has ] bracket"`, false},
		{`"escaped \" quote`, true},
		{`]]`, false},
		{"{\n\"a\": 1\n}", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, needsMoreInput(tc.text), tc.text)
	}
}

func TestReplSessionFeed(t *testing.T) {
	var out bytes.Buffer
	s := &replSession{out: &out, format: cliutil.FormatJSON}

	full, done := s.feed(`{"a": [1,`)
	assert.False(t, done)
	assert.Empty(t, full, "incomplete input is buffered")
	assert.Empty(t, out.String())

	full, done = s.feed(`2]}`)
	assert.False(t, done)
	assert.Equal(t, "{\"a\": [1,\n2]}", full)
	assert.Equal(t, `{"a":[1,2]}`+"\n", out.String())

	out.Reset()
	s.feed(`{} garbage`)
	assert.True(t, strings.HasPrefix(out.String(), "error: parse error"), out.String())

	out.Reset()
	s.feed(":yaml")
	s.feed(`{"k": null}`)
	assert.Equal(t, "k: null\n", out.String())

	out.Reset()
	s.feed(":tokens [true]")
	assert.Contains(t, out.String(), "WORD")

	_, done = s.feed("quit")
	assert.True(t, done)
}

func TestWriteTokenTable(t *testing.T) {
	toks, err := descent.Tokenize(`{"a": 1}`)
	require.NoError(t, err)

	var buf bytes.Buffer
	writeTokenTable(&buf, toks)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "OFFSET")
	assert.Contains(t, lines[2], "STRING")
	assert.Contains(t, lines[2], `"a"`)
}

func TestWriteTokensJSON(t *testing.T) {
	toks, err := descent.Tokenize(`[1, null]`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeTokensJSON(&buf, toks))
	v, err := descent.ParseBytes(buf.Bytes())
	require.NoError(t, err, "token JSON must itself parse")
	assert.Equal(t, 5, v.Len())
	assert.Contains(t, buf.String(), `"kind": "NUMBER"`)

	null, ok := v.Index(3)
	require.True(t, ok)
	kw, ok := null.Get("keyword")
	require.True(t, ok, "keyword flag on null")
	b, _ := kw.AsBool()
	assert.True(t, b)
	first, _ := v.Index(0)
	_, ok = first.Get("keyword")
	assert.False(t, ok, "omitted for punctuation")
}

func TestReportDocuments(t *testing.T) {
	docs := []descent.Document{
		{Path: "a.json", Size: 2048},
		{Path: "b.json", Size: 10, Err: errors.New("boom")},
	}
	var buf bytes.Buffer
	failed := reportDocuments(&buf, docs, false)
	assert.Equal(t, 1, failed)
	out := buf.String()
	assert.Contains(t, out, "ok    a.json (null, 2.0 kB)")
	assert.Contains(t, out, "FAIL  b.json: boom")
	assert.Contains(t, out, "2 documents, 1 failed, 2.1 kB parsed")

	buf.Reset()
	reportDocuments(&buf, docs, true)
	assert.NotContains(t, buf.String(), "a.json")
}

func TestBuildSource(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "dir", "a.json"), []byte(`1`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte(`2`), 0o644))

	src, err := buildSource([]string{filepath.Join(root, "dir"), filepath.Join(root, "b.txt")})
	require.NoError(t, err)
	docs, err := descent.ParseAll(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.NoError(t, d.Err, d.Path)
	}

	_, err = buildSource([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)
}

func TestReadInputURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.json":
			_, _ = w.Write([]byte(`{"remote": true}`))
		case "/big.json":
			_, _ = w.Write([]byte(strings.Repeat(" ", 64) + "1"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := &cli{config: cliutil.DefaultConfig()}
	data, err := c.readInput(context.Background(), srv.URL+"/ok.json")
	require.NoError(t, err)
	assert.Equal(t, `{"remote": true}`, string(data))

	_, err = c.readInput(context.Background(), srv.URL+"/missing.json")
	assert.ErrorContains(t, err, "404")

	c.config.MaxInputSize = 16
	_, err = c.readInput(context.Background(), srv.URL+"/big.json")
	assert.ErrorIs(t, err, descent.ErrInputTooLarge)
}

func TestWatcherWants(t *testing.T) {
	root := t.TempDir()
	named := filepath.Join(root, "named.cfg")
	w := &watcher{
		files: []string{named},
		roots: []string{filepath.Join(root, "tree")},
	}
	assert.True(t, w.wants(named))
	assert.True(t, w.wants(filepath.Join(root, "tree", "sub", "x.json")))
	assert.False(t, w.wants(filepath.Join(root, "tree", "x.txt")))
	assert.False(t, w.wants(filepath.Join(root, "other.json")))
}
