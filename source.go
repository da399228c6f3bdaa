package descent

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// DefaultExtensions are the file extensions recognized as JSON documents.
// Compressed variants are decoded transparently.
var DefaultExtensions = []string{".json", ".json.gz", ".json.zst"}

// Source lists and opens JSON documents.
type Source interface {
	// ListFiles returns all document paths known to this source.
	ListFiles() ([]string, error)

	// Open returns the raw content of a path returned by ListFiles.
	// Returns fs.ErrNotExist for unknown paths.
	Open(path string) (io.ReadCloser, error)
}

// SourceOption configures a source.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	extensions []string
}

func defaultSourceConfig() sourceConfig {
	return sourceConfig{
		extensions: DefaultExtensions,
	}
}

func newSourceConfig(opts []SourceOption) sourceConfig {
	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithExtensions sets the file extensions to recognize for this source.
// Matching is case-insensitive and by suffix, so ".json.gz" works.
func WithExtensions(exts ...string) SourceOption {
	return func(c *sourceConfig) {
		c.extensions = exts
	}
}

// --- Dir Source (single directory, lazy) ---

type dirSource struct {
	path   string
	config sourceConfig
}

// Dir creates a Source over a single directory (no recursion).
// The directory is read on each ListFiles call.
func Dir(path string, opts ...SourceOption) (Source, error) {
	if err := checkDir(path); err != nil {
		return nil, err
	}
	return &dirSource{path: path, config: newSourceConfig(opts)}, nil
}

// MustDir is like Dir but panics on error.
func MustDir(path string, opts ...SourceOption) Source {
	src, err := Dir(path, opts...)
	if err != nil {
		panic(err)
	}
	return src
}

func (s *dirSource) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.path, entry.Name())
		if hasValidExtension(path, s.config.extensions) {
			files = append(files, path)
		}
	}
	return files, nil
}

func (s *dirSource) Open(path string) (io.ReadCloser, error) {
	if filepath.Dir(path) != filepath.Clean(s.path) {
		return nil, fs.ErrNotExist
	}
	return os.Open(path)
}

// --- DirTree Source (recursive directory, indexed) ---

type treeSource struct {
	files map[string]struct{}
}

// DirTree creates a Source that recursively indexes a directory tree.
// It walks the tree once at construction. Unreadable subdirectories are
// skipped.
func DirTree(root string, opts ...SourceOption) (Source, error) {
	if err := checkDir(root); err != nil {
		return nil, err
	}
	cfg := newSourceConfig(opts)
	files := make(map[string]struct{})

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !hasValidExtension(path, cfg.extensions) {
			return nil
		}
		files[path] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &treeSource{files: files}, nil
}

// MustDirTree is like DirTree but panics on error.
func MustDirTree(root string, opts ...SourceOption) Source {
	src, err := DirTree(root, opts...)
	if err != nil {
		panic(err)
	}
	return src
}

func (s *treeSource) ListFiles() ([]string, error) {
	files := make([]string, 0, len(s.files))
	for path := range s.files {
		files = append(files, path)
	}
	slices.Sort(files)
	return files, nil
}

func (s *treeSource) Open(path string) (io.ReadCloser, error) {
	if _, ok := s.files[path]; !ok {
		return nil, fs.ErrNotExist
	}
	return os.Open(path)
}

// --- Files Source (explicit list) ---

type filesSource struct {
	paths []string
}

// Files creates a Source over an explicit list of file paths. Extensions
// are not checked; every path is listed.
func Files(paths ...string) Source {
	return &filesSource{paths: slices.Clone(paths)}
}

func (s *filesSource) ListFiles() ([]string, error) {
	return slices.Clone(s.paths), nil
}

func (s *filesSource) Open(path string) (io.ReadCloser, error) {
	if !slices.Contains(s.paths, path) {
		return nil, fs.ErrNotExist
	}
	return os.Open(path)
}

// --- FS Source (for embed.FS, testing, http filesystems) ---

type fsSource struct {
	name   string
	fsys   fs.FS
	config sourceConfig

	once  sync.Once
	paths []string
	err   error
}

// FS creates a Source backed by an fs.FS (e.g., embed.FS).
// Listed paths are prefixed with name and a colon. The filesystem is
// walked lazily on first use.
func FS(name string, fsys fs.FS, opts ...SourceOption) Source {
	return &fsSource{
		name:   name,
		fsys:   fsys,
		config: newSourceConfig(opts),
	}
}

func (s *fsSource) ListFiles() ([]string, error) {
	s.once.Do(func() {
		s.paths, s.err = s.walk()
	})
	if s.err != nil {
		return nil, s.err
	}

	files := make([]string, len(s.paths))
	for i, p := range s.paths {
		files[i] = s.name + ":" + p
	}
	return files, nil
}

func (s *fsSource) Open(path string) (io.ReadCloser, error) {
	rel, ok := strings.CutPrefix(path, s.name+":")
	if !ok {
		return nil, fs.ErrNotExist
	}
	return s.fsys.Open(rel)
}

func (s *fsSource) walk() ([]string, error) {
	var paths []string
	err := fs.WalkDir(s.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !hasValidExtension(path, s.config.extensions) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

// --- Multi Source (combines multiple sources) ---

type multiSource struct {
	sources []Source
}

// Multi combines multiple sources into one.
// Open tries each source in order, returning the first match.
func Multi(sources ...Source) Source {
	return &multiSource{sources: sources}
}

func (s *multiSource) ListFiles() ([]string, error) {
	var files []string
	for _, src := range s.sources {
		f, err := src.ListFiles()
		if err != nil {
			return nil, err
		}
		files = append(files, f...)
	}
	return files, nil
}

func (s *multiSource) Open(path string) (io.ReadCloser, error) {
	for _, src := range s.sources {
		r, err := src.Open(path)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fs.ErrNotExist
}

// --- Helpers ---

func checkDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	return nil
}

func hasValidExtension(path string, extensions []string) bool {
	lower := strings.ToLower(path)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// ReadDocument reads a document, decompressing by file suffix. At most
// limit bytes of decompressed content are accepted when limit is positive.
func ReadDocument(src Source, path string, limit int) ([]byte, error) {
	f, err := src.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	switch lower := strings.ToLower(path); {
	case strings.HasSuffix(lower, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case strings.HasSuffix(lower, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}
	return ReadLimited(r, limit)
}
