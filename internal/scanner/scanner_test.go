package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeeeeee/idea-producer/pkg/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func scan(t *testing.T, root string) (*types.Manifest, []Diagnostic) {
	t.Helper()
	sc, err := New(root, ".idea-agent-ignore", nil)
	require.NoError(t, err)
	m, diags, err := sc.Scan()
	require.NoError(t, err)
	return m, diags
}

func TestScanBasic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "print('hi')\n")
	writeFile(t, root, "pkg/util.go", "package pkg\n")
	writeFile(t, root, "notes.txt", "not a recognized extension\n")

	m, diags := scan(t, root)

	assert.Empty(t, diags)
	require.Len(t, m.Files, 3)

	py := m.Files["main.py"]
	assert.Equal(t, "main.py", py.Path)
	assert.Equal(t, "python", py.Language)
	assert.Equal(t, int64(12), py.Size)
	assert.Len(t, py.Hash, 16)

	assert.Equal(t, "go", m.Files["pkg/util.go"].Language)
	assert.Empty(t, m.Files["notes.txt"].Language)
}

func TestScanBuiltinIgnores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.py", "x = 1\n")
	writeFile(t, root, ".git/config", "[core]\n")
	writeFile(t, root, ".git/objects/ab/cdef", "blob\n")
	writeFile(t, root, "__pycache__/keep.cpython-311.pyc", "bytecode")
	writeFile(t, root, "node_modules/left-pad/index.js", "module.exports = {}\n")
	writeFile(t, root, "compiled.pyc", "bytecode")
	writeFile(t, root, ".idea-producer/index/index.db", "db")

	m, _ := scan(t, root)

	require.Len(t, m.Files, 1)
	assert.Contains(t, m.Files, "keep.py")
}

func TestScanGitignoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "build/\n*.log\n")
	writeFile(t, root, "keep.go", "package main\n")
	writeFile(t, root, "build/out.go", "package out\n")
	writeFile(t, root, "debug.log", "noise\n")

	m, _ := scan(t, root)

	assert.Contains(t, m.Files, "keep.go")
	assert.Contains(t, m.Files, ".gitignore")
	assert.NotContains(t, m.Files, "build/out.go")
	assert.NotContains(t, m.Files, "debug.log")
}

func TestScanToolIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".idea-agent-ignore", "generated/\nsecret.yaml\n")
	writeFile(t, root, "keep.py", "x = 1\n")
	writeFile(t, root, "generated/gen.py", "x = 2\n")
	writeFile(t, root, "secret.yaml", "token: abc\n")

	m, _ := scan(t, root)

	assert.Contains(t, m.Files, "keep.py")
	assert.NotContains(t, m.Files, "generated/gen.py")
	assert.NotContains(t, m.Files, "secret.yaml")
}

func TestScanSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "real.go", "package main\n")
	require.NoError(t, os.Symlink(
		filepath.Join(root, "real.go"),
		filepath.Join(root, "link.go"),
	))

	m, _ := scan(t, root)

	assert.Contains(t, m.Files, "real.go")
	assert.NotContains(t, m.Files, "link.go")
}

func TestScanDigestStableAcrossRuns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "a = 1\n")
	writeFile(t, root, "b/c.py", "c = 3\n")

	first, _ := scan(t, root)
	second, _ := scan(t, root)

	assert.Equal(t, first.Digest(), second.Digest())
	assert.True(t, types.DiffManifests(first, second).Empty())
}

func TestScanDetectsContentChange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "a = 1\n")
	writeFile(t, root, "b.py", "b = 2\n")

	before, _ := scan(t, root)

	writeFile(t, root, "a.py", "a = 100\n")
	writeFile(t, root, "new.py", "n = 0\n")
	require.NoError(t, os.Remove(filepath.Join(root, "b.py")))

	after, _ := scan(t, root)

	diff := types.DiffManifests(before, after)
	assert.Equal(t, []string{"new.py"}, diff.Added)
	assert.Equal(t, []string{"a.py"}, diff.Modified)
	assert.Equal(t, []string{"b.py"}, diff.Removed)
	assert.NotEqual(t, before.Digest(), after.Digest())
}

func TestScanMissingRoot(t *testing.T) {
	sc, err := New(filepath.Join(t.TempDir(), "does-not-exist"), "", nil)
	require.NoError(t, err)

	_, _, err = sc.Scan()
	assert.Error(t, err)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.py", "python"},
		{"src/app.ts", "typescript"},
		{"cmd/tool/main.go", "go"},
		{"lib.rs", "rust"},
		{"schema.SQL", "sql"},
		{"README.md", "markdown"},
		{"config.yml", "yaml"},
		{"binary.exe", ""},
		{"Makefile", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.path), tt.path)
	}
}
