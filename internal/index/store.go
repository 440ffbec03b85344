package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nodeeeeee/idea-producer/internal/chunker"
	"github.com/nodeeeeee/idea-producer/internal/config"
	"github.com/nodeeeeee/idea-producer/internal/embedder"
	"github.com/nodeeeeee/idea-producer/pkg/types"
)

// Common errors
var (
	ErrNotLoaded         = errors.New("index: snapshot not loaded")
	ErrDimensionMismatch = errors.New("index: embedding dimension mismatch")
)

// embedBatchSize bounds how many chunk texts go into one provider call.
const embedBatchSize = 50

// Store maintains index snapshots: loading, incremental update, pruning,
// and durable persistence. A Store is not designed for concurrent writers;
// a process updating a storage location must hold exclusive access for the
// duration of Update plus Persist (the CLI takes a file lock for this).
type Store struct {
	cfg      config.Config
	splitter *chunker.Splitter
	embedder embedder.Embedder
	logger   *slog.Logger

	mu sync.Mutex // guards snapshot mutation during a parallel update
}

// UpdateStats summarizes one update pass.
type UpdateStats struct {
	DocsIndexed    int
	DocsSkipped    int
	DocsFailed     int
	ChunksCreated  int
	EmbeddingCalls int // chunk embeddings requested from the provider
	Duration       time.Duration
	Errors         []string
}

// New creates a Store. All tunables come from the explicit config value.
func New(cfg config.Config, splitter *chunker.Splitter, emb embedder.Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		cfg:      cfg,
		splitter: splitter,
		embedder: emb,
		logger:   logger,
	}
}

// LoadOrCreate deserializes the persisted snapshot at dir if one exists, or
// initializes an empty snapshot with the configured embedding dimension.
func (st *Store) LoadOrCreate(dir string) (*Snapshot, error) {
	dbPath := filepath.Join(dir, snapshotFile)
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			st.logger.Info("no persisted snapshot, starting empty", "dir", dir, "dim", st.cfg.EmbeddingDim)
			return NewSnapshot(st.cfg.EmbeddingDim), nil
		}
		return nil, fmt.Errorf("stat snapshot %s: %w", dbPath, err)
	}

	snap, err := readSnapshot(dbPath)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", dbPath, err)
	}
	if snap.Dim != st.cfg.EmbeddingDim {
		return nil, fmt.Errorf("%w: snapshot has %d, configured %d",
			ErrDimensionMismatch, snap.Dim, st.cfg.EmbeddingDim)
	}

	st.logger.Info("snapshot loaded",
		"dir", dir,
		"documents", snap.DocumentCount(),
		"chunks", snap.ChunkCount())
	return snap, nil
}

// Update re-indexes every manifest path whose language is recognized and
// whose content hash differs from the hash currently recorded in the
// snapshot. Embedding work runs with bounded parallelism; a failure to read
// or embed one document is logged, counted, and skipped without touching
// that document's prior entry or aborting the batch.
//
// Paths present in the snapshot but absent from the manifest are left in
// place; removal is the separate, explicit Prune operation.
func (st *Store) Update(ctx context.Context, snap *Snapshot, m *types.Manifest, root string) (*UpdateStats, error) {
	if snap == nil {
		return nil, ErrNotLoaded
	}

	start := time.Now()
	stats := &UpdateStats{}

	var candidates []types.FileRecord
	for path, rec := range m.Files {
		if rec.Language == "" {
			continue
		}
		if hash, ok := snap.DocumentHash(path); ok && hash == rec.Hash {
			stats.DocsSkipped++
			continue
		}
		candidates = append(candidates, rec)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Path < candidates[j].Path })

	if len(candidates) == 0 {
		stats.Duration = time.Since(start)
		st.logger.Info("index up to date", "skipped", stats.DocsSkipped)
		return stats, nil
	}

	var statsMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(st.cfg.Workers)

	for _, rec := range candidates {
		rec := rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			doc, chunks, err := st.processDocument(gctx, rec, root)
			if err != nil {
				st.logger.Warn("skipping document", "path", rec.Path, "error", err)
				statsMu.Lock()
				stats.DocsFailed++
				stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", rec.Path, err))
				statsMu.Unlock()
				return nil
			}

			// Each chunk ID is written exactly once per pass, so completion
			// order cannot affect the final snapshot.
			st.mu.Lock()
			snap.ReplaceDocument(doc, chunks)
			st.mu.Unlock()

			statsMu.Lock()
			stats.DocsIndexed++
			stats.ChunksCreated += len(chunks)
			stats.EmbeddingCalls += len(chunks)
			statsMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	st.logger.Info("update complete",
		"indexed", stats.DocsIndexed,
		"skipped", stats.DocsSkipped,
		"failed", stats.DocsFailed,
		"chunks", stats.ChunksCreated,
		"duration", stats.Duration)
	return stats, nil
}

// processDocument reads, splits, and embeds one file, returning the
// replacement document and its full chunk set.
func (st *Store) processDocument(ctx context.Context, rec types.FileRecord, root string) (*types.Document, []*types.Chunk, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rec.Path)))
	if err != nil {
		return nil, nil, fmt.Errorf("read: %w", err)
	}

	spans := st.splitter.Split(string(data))

	chunks := make([]*types.Chunk, 0, len(spans))
	texts := make([]string, 0, len(spans))
	for i, span := range spans {
		chunks = append(chunks, &types.Chunk{
			ID:         types.ChunkID(rec.Path, i),
			DocPath:    rec.Path,
			Seq:        i,
			Text:       span.Text,
			TokenCount: span.TokenCount,
			DocHash:    rec.Hash,
		})
		texts = append(texts, span.Text)
	}

	for i := 0; i < len(texts); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := st.embedder.EmbedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, nil, fmt.Errorf("embed: %w", err)
		}
		for j, v := range vectors {
			if len(v) != st.cfg.EmbeddingDim {
				return nil, nil, fmt.Errorf("%w: provider returned %d, configured %d",
					ErrDimensionMismatch, len(v), st.cfg.EmbeddingDim)
			}
			chunks[i+j].Vector = v
		}
	}

	doc := &types.Document{
		Path:        rec.Path,
		ContentHash: rec.Hash,
		Language:    rec.Language,
		ChunkIDs:    make([]string, len(chunks)),
	}
	for i, c := range chunks {
		doc.ChunkIDs[i] = c.ID
	}
	return doc, chunks, nil
}

// Prune removes every document present in the snapshot but absent from the
// manifest, returning the removed paths. Update never does this implicitly:
// retention of stale documents is the documented default and callers opt in
// to removal.
func (st *Store) Prune(snap *Snapshot, m *types.Manifest) []string {
	if snap == nil {
		return nil
	}

	var stale []string
	for path := range snap.Documents {
		if _, ok := m.Files[path]; !ok {
			stale = append(stale, path)
		}
	}
	sort.Strings(stale)

	st.mu.Lock()
	for _, path := range stale {
		snap.RemoveDocument(path)
	}
	st.mu.Unlock()

	if len(stale) > 0 {
		st.logger.Info("pruned stale documents", "count", len(stale))
	}
	return stale
}

// Persist writes the full snapshot to dir. The database is written at a
// temporary path and renamed over the live file only on success, so a crash
// mid-write never corrupts the on-disk state. Any write error fails the
// whole operation; there is no partial-success state.
func (st *Store) Persist(snap *Snapshot, dir string) error {
	if snap == nil {
		return ErrNotLoaded
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, snapshotFile)
	tmpPath := dbPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := writeSnapshot(snap, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("persist snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, dbPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("swap snapshot into place: %w", err)
	}

	st.logger.Info("snapshot persisted",
		"path", dbPath,
		"documents", snap.DocumentCount(),
		"chunks", snap.ChunkCount())
	return nil
}
