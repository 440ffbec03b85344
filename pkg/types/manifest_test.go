package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifestFrom(pairs map[string]string) *Manifest {
	files := make(map[string]FileRecord, len(pairs))
	for path, hash := range pairs {
		files[path] = FileRecord{Path: path, Hash: hash}
	}
	return NewManifest("/repo", files)
}

func TestManifestDigestDeterministic(t *testing.T) {
	a := manifestFrom(map[string]string{
		"a.go":     "1111111111111111",
		"b/c.py":   "2222222222222222",
		"README.md": "3333333333333333",
	})
	b := manifestFrom(map[string]string{
		"README.md": "3333333333333333",
		"a.go":     "1111111111111111",
		"b/c.py":   "2222222222222222",
	})

	require.Equal(t, a.Digest(), b.Digest())
	assert.Len(t, a.Digest(), 16)
}

func TestManifestDigestIgnoresScanMetadata(t *testing.T) {
	a := manifestFrom(map[string]string{"a.go": "1111111111111111"})
	b := manifestFrom(map[string]string{"a.go": "1111111111111111"})
	b.RepoPath = "/elsewhere"
	b.ScannedAt = time.Now().Add(time.Hour)

	assert.Equal(t, a.Digest(), b.Digest())
}

func TestManifestDigestSensitiveToContent(t *testing.T) {
	base := manifestFrom(map[string]string{"a.go": "1111111111111111"})

	changedHash := manifestFrom(map[string]string{"a.go": "ffffffffffffffff"})
	assert.NotEqual(t, base.Digest(), changedHash.Digest())

	extraFile := manifestFrom(map[string]string{
		"a.go": "1111111111111111",
		"b.go": "2222222222222222",
	})
	assert.NotEqual(t, base.Digest(), extraFile.Digest())
}

func TestManifestDigestEmpty(t *testing.T) {
	a := NewManifest("/repo", nil)
	b := NewManifest("/other", map[string]FileRecord{})
	assert.Equal(t, a.Digest(), b.Digest())
}

func TestDiffManifests(t *testing.T) {
	old := manifestFrom(map[string]string{
		"keep.go":   "1111111111111111",
		"change.go": "2222222222222222",
		"gone.go":   "3333333333333333",
	})
	now := manifestFrom(map[string]string{
		"keep.go":   "1111111111111111",
		"change.go": "9999999999999999",
		"new.go":    "4444444444444444",
	})

	diff := DiffManifests(old, now)

	assert.Equal(t, []string{"new.go"}, diff.Added)
	assert.Equal(t, []string{"change.go"}, diff.Modified)
	assert.Equal(t, []string{"gone.go"}, diff.Removed)
	assert.False(t, diff.Empty())
}

func TestDiffManifestsIdentical(t *testing.T) {
	old := manifestFrom(map[string]string{"a.go": "1111111111111111"})
	now := manifestFrom(map[string]string{"a.go": "1111111111111111"})

	diff := DiffManifests(old, now)
	assert.True(t, diff.Empty())
	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Modified)
	assert.Empty(t, diff.Removed)
}

func TestDiffManifestsPure(t *testing.T) {
	old := manifestFrom(map[string]string{"a.go": "1111111111111111"})
	now := manifestFrom(map[string]string{"b.go": "2222222222222222"})

	before := old.Digest()
	_ = DiffManifests(old, now)
	_ = DiffManifests(old, now)

	assert.Equal(t, before, old.Digest())
	assert.Len(t, old.Files, 1)
	assert.Len(t, now.Files, 1)
}

func TestDiffManifestsSortedOutput(t *testing.T) {
	old := NewManifest("/repo", nil)
	now := manifestFrom(map[string]string{
		"z.go": "1111111111111111",
		"a.go": "2222222222222222",
		"m.go": "3333333333333333",
	})

	diff := DiffManifests(old, now)
	assert.Equal(t, []string{"a.go", "m.go", "z.go"}, diff.Added)
}
