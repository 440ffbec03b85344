package types

import (
	"fmt"
	"sort"
	"time"

	"github.com/zeebo/xxh3"
)

// ManifestVersion identifies the manifest schema.
const ManifestVersion = "1.0.0"

// FileRecord describes one file captured at scan time.
type FileRecord struct {
	Path         string    `json:"path"` // relative to the repo root, slash-separated
	Size         int64     `json:"size"`
	Hash         string    `json:"hash"` // xxh3-64 of the file bytes, 16 hex chars
	LastModified time.Time `json:"last_modified"`
	Language     string    `json:"language,omitempty"` // empty when the extension is not recognized
}

// Manifest is a point-in-time inventory of a tree's indexable content.
// It is immutable once built: compare manifests via DiffManifests, never
// mutate them in place.
type Manifest struct {
	Version   string                `json:"version"`
	RepoPath  string                `json:"repo_path"`
	ScannedAt time.Time             `json:"scanned_at"`
	Files     map[string]FileRecord `json:"files"`
}

// NewManifest creates a manifest for the given repo root.
func NewManifest(repoPath string, files map[string]FileRecord) *Manifest {
	if files == nil {
		files = make(map[string]FileRecord)
	}
	return &Manifest{
		Version:   ManifestVersion,
		RepoPath:  repoPath,
		ScannedAt: time.Now(),
		Files:     files,
	}
}

// Digest returns a stable fingerprint of the manifest's indexable content.
// It is a pure function of the (path, hash) pairs: insertion order and scan
// metadata (timestamps, repo path) do not affect the result.
func (m *Manifest) Digest() string {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h := xxh3.New()
	for _, p := range paths {
		_, _ = h.WriteString(p)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(m.Files[p].Hash)
		_, _ = h.WriteString("\n")
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// ManifestDiff reports how two manifests differ. Paths are sorted for
// deterministic output, but callers must not rely on any ordering beyond
// membership in the respective manifest's key set.
type ManifestDiff struct {
	Added    []string
	Modified []string
	Removed  []string
}

// Empty reports whether the diff contains no changes.
func (d ManifestDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Removed) == 0
}

// DiffManifests compares two manifests. A path is added if absent in old,
// modified if present in both with differing hashes, and removed if present
// in old but absent in new. Pure function: neither manifest is mutated.
func DiffManifests(old, new *Manifest) ManifestDiff {
	var diff ManifestDiff

	for path, rec := range new.Files {
		prev, ok := old.Files[path]
		switch {
		case !ok:
			diff.Added = append(diff.Added, path)
		case prev.Hash != rec.Hash:
			diff.Modified = append(diff.Modified, path)
		}
	}

	for path := range old.Files {
		if _, ok := new.Files[path]; !ok {
			diff.Removed = append(diff.Removed, path)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Modified)
	sort.Strings(diff.Removed)

	return diff
}
