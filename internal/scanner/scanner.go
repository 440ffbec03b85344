package scanner

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/zeebo/xxh3"

	"github.com/nodeeeeee/idea-producer/pkg/types"
)

// hashBufferSize is the fixed read size for streamed content hashing.
const hashBufferSize = 64 * 1024

// builtinIgnores are always applied before any ignore file is consulted:
// version-control directories, caches, and the tool's own working directory.
var builtinIgnores = []string{
	".git/",
	".idea/",
	"__pycache__/",
	"*.pyc",
	"node_modules/",
	".idea-producer/",
}

// Diagnostic reports a non-fatal condition encountered during a scan, such
// as a file that vanished mid-walk or could not be read.
type Diagnostic struct {
	Path string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Path, d.Err)
}

// Scanner walks a directory tree and builds a Manifest of its indexable
// content. Ignore rules come from the built-in set, the repository's
// .gitignore, and a tool-specific ignore file, all in the gitignore dialect
// (glob patterns with negation, trailing slash for directory-only).
type Scanner struct {
	root    string
	matcher *ignore.GitIgnore
	logger  *slog.Logger
}

// New creates a Scanner rooted at root. ignoreFile is the name of the
// tool-specific ignore file consulted in addition to .gitignore; pass the
// empty string to skip it.
func New(root string, ignoreFile string, logger *slog.Logger) (*Scanner, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	lines := make([]string, 0, len(builtinIgnores))
	lines = append(lines, builtinIgnores...)
	lines = append(lines, readIgnoreLines(filepath.Join(abs, ".gitignore"))...)
	if ignoreFile != "" {
		lines = append(lines, readIgnoreLines(filepath.Join(abs, ignoreFile))...)
	}

	return &Scanner{
		root:    abs,
		matcher: ignore.CompileIgnoreLines(lines...),
		logger:  logger,
	}, nil
}

// Root returns the absolute path the scanner walks.
func (s *Scanner) Root() string {
	return s.root
}

// Scan traverses the tree and returns a Manifest whose digest is a stable
// fingerprint of the tree's indexable content. Per-file I/O failures are
// non-fatal: the file is skipped and reported as a diagnostic. A directory
// matching an ignore pattern is pruned before descent.
func (s *Scanner) Scan() (*types.Manifest, []Diagnostic, error) {
	files := make(map[string]types.FileRecord)
	var diags []Diagnostic

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			diags = append(diags, Diagnostic{Path: path, Err: err})
			s.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if s.matcher.MatchesPath(rel + "/") {
				return fs.SkipDir
			}
			return nil
		}

		if s.matcher.MatchesPath(rel) {
			return nil
		}
		// Regular files only: symlinks and special files are never indexed.
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			diags = append(diags, Diagnostic{Path: rel, Err: err})
			s.logger.Warn("skipping vanished file", "path", rel, "error", err)
			return nil
		}

		hash, err := hashFile(path)
		if err != nil {
			// The file exists but cannot be read. Fall back to a hash of the
			// path string so the manifest still covers it; this weakens the
			// content-addressed change-detection invariant for this one case.
			hash = hashString(path)
			diags = append(diags, Diagnostic{Path: rel, Err: err})
			s.logger.Warn("unreadable file, using path-derived hash", "path", rel, "error", err)
		}

		files[rel] = types.FileRecord{
			Path:         rel,
			Size:         info.Size(),
			Hash:         hash,
			LastModified: info.ModTime(),
			Language:     DetectLanguage(rel),
		}
		return nil
	})
	if err != nil {
		return nil, diags, fmt.Errorf("scan %s: %w", s.root, err)
	}

	return types.NewManifest(s.root, files), diags, nil
}

// readIgnoreLines loads one ignore file; a missing file contributes nothing.
func readIgnoreLines(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return strings.Split(string(data), "\n")
}

// hashFile streams the file through xxh3 with a fixed buffer size. The
// result is deterministic for identical bytes and byte order matters.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := xxh3.New()
	buf := make([]byte, hashBufferSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// hashString hashes an arbitrary string with the same hash family as file
// contents. Used only for the unreadable-file fallback.
func hashString(s string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(s))
}
