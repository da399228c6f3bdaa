package descent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/golangsnmp/descent/internal/types"
)

// ErrNoSources is returned when ParseAll is called with a nil source.
var ErrNoSources = errors.New("no document sources provided")

// Document is the result of parsing one file from a Source.
type Document struct {
	Path  string
	Size  int   // decompressed size in bytes
	Value Value // null when Err is set
	Err   error // read, lex or parse failure for this document only
}

// ParseAll parses every document in src concurrently, with at most
// runtime.NumCPU() documents in flight. Failures of individual documents
// are recorded in Document.Err and do not stop the batch. The returned
// documents are sorted by path.
//
// With WithTrace, each document's token trace is collected separately and
// written as one block headed by "# path". Blocks appear in completion
// order and never interleave.
//
// ParseAll returns an error only when the source cannot be listed or ctx
// is cancelled.
//
// Example:
//
//	docs, err := descent.ParseAll(ctx, descent.MustDirTree("./testdata"))
//	for _, d := range docs {
//	    if d.Err != nil {
//	        log.Printf("%s: %v", d.Path, d.Err)
//	    }
//	}
func ParseAll(ctx context.Context, src Source, opts ...ParseOption) ([]Document, error) {
	if src == nil {
		return nil, ErrNoSources
	}
	cfg := newParseConfig(opts)
	logger := types.Component(cfg.logger, "batch")
	log := types.Logger{L: logger}

	paths, err := src.ListFiles()
	if err != nil {
		return nil, err
	}
	log.Log(slog.LevelInfo, "parsing documents", slog.Int("files", len(paths)))

	var sink *traceSink
	if cfg.trace != nil {
		sink = &traceSink{w: cfg.trace}
	}

	docs := make([]Document, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dcfg := cfg
			var trace bytes.Buffer
			if sink != nil {
				dcfg.trace = &trace
			}
			docs[i] = parseDocument(src, path, dcfg)
			if sink != nil && trace.Len() > 0 {
				sink.flush(path, &trace)
			}
			if docs[i].Err != nil {
				log.Log(slog.LevelDebug, "document failed",
					slog.String("path", path),
					slog.String("error", docs[i].Err.Error()))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(docs, func(a, b Document) int {
		return strings.Compare(a.Path, b.Path)
	})
	log.Log(slog.LevelInfo, "documents parsed",
		slog.Int("files", len(docs)),
		slog.Int("failed", countFailed(docs)))
	return docs, nil
}

// ParseFile reads and parses a single file. Compressed files are decoded
// by suffix as with DefaultExtensions.
func ParseFile(path string, opts ...ParseOption) (Value, error) {
	cfg := newParseConfig(opts)
	content, err := ReadDocument(Files(path), path, cfg.maxInput)
	if err != nil {
		return Value{}, err
	}
	return parseSource(content, cfg)
}

func parseDocument(src Source, path string, cfg parseConfig) Document {
	doc := Document{Path: path}
	content, err := ReadDocument(src, path, cfg.maxInput)
	if err != nil {
		doc.Err = err
		return doc
	}
	doc.Size = len(content)
	doc.Value, doc.Err = parseSource(content, cfg)
	return doc
}

// traceSink serializes per-document trace blocks onto one writer.
type traceSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (t *traceSink) flush(path string, trace *bytes.Buffer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := fmt.Fprintf(t.w, "# %s\n", path); err != nil {
		return
	}
	_, _ = trace.WriteTo(t.w)
}

func countFailed(docs []Document) int {
	n := 0
	for _, d := range docs {
		if d.Err != nil {
			n++
		}
	}
	return n
}
