package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/golangsnmp/descent"
)

const checkUsage = `descent check - Validate every document under files or directories

Usage:
  descent check [options] PATH...

Directories are searched recursively for .json, .json.gz and .json.zst
files. Files named explicitly are checked whatever their extension.
Exits with status 2 if any document fails.

Options:
  -q, --quiet   Print failures and the summary only
  -h, --help    Show help

Examples:
  descent check ./configs
  descent check -q a.json b.json.gz ./more
`

func (c *cli) cmdCheck(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, checkUsage) }

	quiet := fs.Bool("q", false, "print failures only")
	fs.BoolVar(quiet, "quiet", false, "print failures only")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, checkUsage)
		return exitOK
	}

	if fs.NArg() == 0 {
		printError("no paths specified")
		fmt.Fprint(os.Stderr, checkUsage)
		return exitError
	}

	src, err := buildSource(fs.Args())
	if err != nil {
		printError("%v", err)
		return exitError
	}

	docs, err := descent.ParseAll(ctx, src, c.parseOptions()...)
	if err != nil {
		printError("%v", err)
		return exitError
	}

	if failed := reportDocuments(os.Stdout, docs, *quiet); failed > 0 {
		return exitInvalid
	}
	return exitOK
}

// buildSource combines directory trees and explicit files into one source.
func buildSource(paths []string) (descent.Source, error) {
	var sources []descent.Source
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		src, err := descent.DirTree(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if len(files) > 0 {
		sources = append(sources, descent.Files(files...))
	}
	return descent.Multi(sources...), nil
}

// reportDocuments prints one line per document and a summary, and returns
// the number of failures.
func reportDocuments(w io.Writer, docs []descent.Document, quiet bool) int {
	var failed int
	var total uint64
	for _, d := range docs {
		total += uint64(d.Size)
		if d.Err != nil {
			failed++
			fmt.Fprintf(w, "FAIL  %s: %v\n", d.Path, d.Err)
			continue
		}
		if !quiet {
			fmt.Fprintf(w, "ok    %s (%s, %s)\n", d.Path, d.Value.Kind(), humanize.Bytes(uint64(d.Size)))
		}
	}
	fmt.Fprintf(w, "%d documents, %d failed, %s parsed\n", len(docs), failed, humanize.Bytes(total))
	return failed
}
