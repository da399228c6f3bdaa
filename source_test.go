package descent

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files under a temporary directory and returns its path.
func writeTree(t *testing.T, files map[string][]byte) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, content, 0o644))
	}
	return root
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdCompressed(t *testing.T, s string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll([]byte(s), nil)
}

func TestDirNonExistentPath(t *testing.T) {
	_, err := Dir("/this/path/does/not/exist/at/all")
	assert.Error(t, err)
}

func TestDirNotADirectory(t *testing.T) {
	root := writeTree(t, map[string][]byte{"a.json": []byte("1")})
	_, err := Dir(filepath.Join(root, "a.json"))
	assert.Error(t, err)
}

func TestMustDirPanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustDir("/this/path/does/not/exist") })
}

func TestDirListsMatchingFilesOnly(t *testing.T) {
	root := writeTree(t, map[string][]byte{
		"a.json":        []byte("1"),
		"b.JSON":        []byte("2"),
		"c.txt":         []byte("3"),
		"nested/d.json": []byte("4"),
	})
	src := MustDir(root)
	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.json"),
		filepath.Join(root, "b.JSON"),
	}, files)

	r, err := src.Open(filepath.Join(root, "a.json"))
	require.NoError(t, err)
	r.Close()

	_, err = src.Open(filepath.Join(root, "nested", "d.json"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDirTreeRecurses(t *testing.T) {
	root := writeTree(t, map[string][]byte{
		"a.json":        []byte("1"),
		"x/b.json":      []byte("2"),
		"x/y/c.json.gz": gzipped(t, "3"),
		"x/y/skip.md":   []byte("no"),
		"z/d.json.zst":  zstdCompressed(t, "4"),
	})
	src := MustDirTree(root)
	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.json"),
		filepath.Join(root, "x", "b.json"),
		filepath.Join(root, "x", "y", "c.json.gz"),
		filepath.Join(root, "z", "d.json.zst"),
	}, files)

	_, err = src.Open(filepath.Join(root, "x", "y", "skip.md"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDirTreeNonExistentPath(t *testing.T) {
	_, err := DirTree("/this/path/does/not/exist/at/all")
	assert.Error(t, err)
	assert.Panics(t, func() { MustDirTree("/this/path/does/not/exist") })
}

func TestWithExtensions(t *testing.T) {
	root := writeTree(t, map[string][]byte{
		"a.json":   []byte("1"),
		"b.jsonld": []byte("2"),
	})
	src := MustDir(root, WithExtensions(".jsonld"))
	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "b.jsonld")}, files)
}

func TestFilesSource(t *testing.T) {
	root := writeTree(t, map[string][]byte{"notes.txt": []byte(`"text"`)})
	path := filepath.Join(root, "notes.txt")
	src := Files(path)

	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)

	r, err := src.Open(path)
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	r.Close()
	assert.Equal(t, `"text"`, string(content))

	_, err = src.Open(filepath.Join(root, "other.json"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFSSource(t *testing.T) {
	fsys := fstest.MapFS{
		"docs/a.json": {Data: []byte(`{"a": 1}`)},
		"docs/b.txt":  {Data: []byte("skip")},
		"more/c.json": {Data: []byte(`[]`)},
	}
	src := FS("mem", fsys)
	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mem:docs/a.json", "mem:more/c.json"}, files)

	r, err := src.Open("mem:docs/a.json")
	require.NoError(t, err)
	r.Close()

	_, err = src.Open("docs/a.json")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMultiSource(t *testing.T) {
	a := FS("a", fstest.MapFS{"one.json": {Data: []byte("1")}})
	b := FS("b", fstest.MapFS{"two.json": {Data: []byte("2")}})
	src := Multi(a, b)

	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a:one.json", "b:two.json"}, files)

	r, err := src.Open("b:two.json")
	require.NoError(t, err)
	r.Close()

	_, err = src.Open("c:three.json")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadDocumentDecompresses(t *testing.T) {
	root := writeTree(t, map[string][]byte{
		"plain.json":     []byte(`[1, 2]`),
		"gz.json.gz":     gzipped(t, `[1, 2]`),
		"zst.json.zst":   zstdCompressed(t, `[1, 2]`),
		"broken.json.gz": []byte("not gzip"),
	})
	src := MustDir(root)
	for _, name := range []string{"plain.json", "gz.json.gz", "zst.json.zst"} {
		t.Run(name, func(t *testing.T) {
			content, err := ReadDocument(src, filepath.Join(root, name), 0)
			require.NoError(t, err)
			assert.Equal(t, `[1, 2]`, string(content))
		})
	}

	_, err := ReadDocument(src, filepath.Join(root, "broken.json.gz"), 0)
	assert.Error(t, err)

	_, err = ReadDocument(src, filepath.Join(root, "gz.json.gz"), 3)
	assert.ErrorIs(t, err, ErrInputTooLarge)
}
