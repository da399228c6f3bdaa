package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/golangsnmp/descent"
)

const watchUsage = `descent watch - Re-check documents whenever they change

Usage:
  descent watch [options] PATH...

Checks every document once, then re-parses each file as it is written or
created until interrupted. Directories are watched recursively.

Options:
  -h, --help   Show help

Examples:
  descent watch ./configs
  descent -v watch settings.json
`

// debounce is the minimum interval between re-parses of one file.
const debounce = 100 * time.Millisecond

type watcher struct {
	fsw     *fsnotify.Watcher
	files   []string // explicitly named files, absolute
	roots   []string // watched directory trees, absolute
	opts    []descent.ParseOption
	out     io.Writer
	lastRun map[string]time.Time
}

func (c *cli) cmdWatch(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, watchUsage) }

	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, watchUsage)
		return exitOK
	}

	if fs.NArg() == 0 {
		printError("no paths specified")
		fmt.Fprint(os.Stderr, watchUsage)
		return exitError
	}

	opts := c.parseOptions()
	src, err := buildSource(fs.Args())
	if err != nil {
		printError("%v", err)
		return exitError
	}
	docs, err := descent.ParseAll(ctx, src, opts...)
	if err != nil {
		printError("%v", err)
		return exitError
	}
	reportDocuments(os.Stdout, docs, true)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		printError("watch: %v", err)
		return exitError
	}
	defer fsw.Close()

	w := &watcher{fsw: fsw, opts: opts, out: os.Stdout, lastRun: make(map[string]time.Time)}
	for _, p := range fs.Args() {
		if err := w.add(p); err != nil {
			printError("watch %s: %v", p, err)
			return exitError
		}
	}

	fmt.Fprintln(os.Stdout, "watching for changes (Ctrl+C to stop)")
	if err := w.run(ctx); err != nil {
		printError("watch: %v", err)
		return exitError
	}
	return exitOK
}

// add registers a directory tree, or the parent directory of a file.
func (w *watcher) add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		w.files = append(w.files, abs)
		return w.fsw.Add(filepath.Dir(abs))
	}
	w.roots = append(w.roots, abs)
	return w.addTree(path)
}

func (w *watcher) addTree(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != path {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

func (w *watcher) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addTree(event.Name)
					continue
				}
			}
			if !w.wants(event.Name) {
				continue
			}
			now := time.Now()
			if now.Sub(w.lastRun[event.Name]) < debounce {
				continue
			}
			w.lastRun[event.Name] = now
			w.check(event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// wants reports whether a changed path should be re-parsed: a named file,
// or a document file under one of the watched trees.
func (w *watcher) wants(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if slices.Contains(w.files, abs) {
		return true
	}
	if !matchesExtension(abs) {
		return false
	}
	for _, root := range w.roots {
		if rel, err := filepath.Rel(root, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

func (w *watcher) check(path string) {
	stamp := time.Now().Format(time.TimeOnly)
	v, err := descent.ParseFile(path, w.opts...)
	if err != nil {
		fmt.Fprintf(w.out, "%s FAIL  %s: %v\n", stamp, path, err)
		return
	}
	fmt.Fprintf(w.out, "%s ok    %s (%s)\n", stamp, path, v.Kind())
}

func matchesExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range descent.DefaultExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
