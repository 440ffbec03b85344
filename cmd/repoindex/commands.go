package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/nodeeeeee/idea-producer/internal/chunker"
	"github.com/nodeeeeee/idea-producer/internal/config"
	"github.com/nodeeeeee/idea-producer/internal/embedder"
	"github.com/nodeeeeee/idea-producer/internal/index"
	"github.com/nodeeeeee/idea-producer/internal/retriever"
	"github.com/nodeeeeee/idea-producer/internal/scanner"
)

// repoArg resolves the optional positional repository argument.
func repoArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// buildStore wires the indexing pipeline from the explicit config value.
func buildStore(cfg config.Config, logger *slog.Logger) (*index.Store, embedder.Embedder, error) {
	emb, err := embedder.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize embedder: %w", err)
	}
	tok, err := chunker.NewTokenizer(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize tokenizer: %w", err)
	}
	return index.New(cfg, chunker.New(cfg, tok), emb, logger), emb, nil
}

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [repo]",
		Short: "Scan a repository and print its manifest summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			sc, err := scanner.New(repoArg(args), cfg.IgnoreFile, logger)
			if err != nil {
				return err
			}
			manifest, diags, err := sc.Scan()
			if err != nil {
				return err
			}

			fmt.Printf("Scanned %d files in %s\n", len(manifest.Files), sc.Root())
			fmt.Printf("Digest: %s\n", manifest.Digest())
			for _, d := range diags {
				fmt.Printf("Skipped: %s\n", d)
			}
			return nil
		},
	}
}

func newUpdateCmd() *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "update [repo]",
		Short: "Incrementally re-index changed files and persist the snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			store, emb, err := buildStore(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = emb.Close() }()

			sc, err := scanner.New(repoArg(args), cfg.IgnoreFile, logger)
			if err != nil {
				return err
			}
			indexDir := filepath.Join(sc.Root(), cfg.IndexDir)

			// The store is a single-writer structure: hold the lock for the
			// whole update+persist window.
			unlock, err := lockIndexDir(indexDir)
			if err != nil {
				return err
			}
			defer unlock()

			manifest, diags, err := sc.Scan()
			if err != nil {
				return err
			}
			for _, d := range diags {
				logger.Warn("scan diagnostic", "detail", d.String())
			}

			snap, err := store.LoadOrCreate(indexDir)
			if err != nil {
				return err
			}

			stats, err := store.Update(cmd.Context(), snap, manifest, sc.Root())
			if err != nil {
				return err
			}
			if prune {
				for _, path := range store.Prune(snap, manifest) {
					fmt.Printf("Pruned: %s\n", path)
				}
			}
			if err := store.Persist(snap, indexDir); err != nil {
				return err
			}

			fmt.Printf("Indexed %d, skipped %d, failed %d (%d chunks, %s)\n",
				stats.DocsIndexed, stats.DocsSkipped, stats.DocsFailed,
				stats.ChunksCreated, stats.Duration.Round(time.Millisecond))
			for _, msg := range stats.Errors {
				fmt.Printf("Failed: %s\n", msg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "remove documents for files no longer in the tree")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [repo] QUERY",
		Short: "Hybrid search over the persisted index",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			repo, query := ".", args[0]
			if len(args) == 2 {
				repo, query = args[0], args[1]
			}
			root, err := filepath.Abs(repo)
			if err != nil {
				return err
			}

			store, emb, err := buildStore(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = emb.Close() }()

			snap, err := store.LoadOrCreate(filepath.Join(root, cfg.IndexDir))
			if err != nil {
				return err
			}

			ret := retriever.New(snap, emb, cfg, logger)
			results, err := ret.Retrieve(cmd.Context(), query, limit)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Println("No results.")
				return nil
			}
			for _, res := range results {
				fmt.Printf("%2d. %-8s %.4f  %s\n", res.Rank, res.Origin, res.Score, res.Chunk.ID)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "k", 0, "top-k per signal (default from config)")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [repo]",
		Short: "Report document and chunk counts for the persisted index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			root, err := filepath.Abs(repoArg(args))
			if err != nil {
				return err
			}

			store, emb, err := buildStore(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = emb.Close() }()

			snap, err := store.LoadOrCreate(filepath.Join(root, cfg.IndexDir))
			if err != nil {
				return err
			}

			fmt.Printf("Documents: %d\n", snap.DocumentCount())
			fmt.Printf("Chunks: %d\n", snap.ChunkCount())
			fmt.Printf("Embedding dim: %d\n", snap.Dim)

			paths := make([]string, 0, len(snap.Documents))
			for p := range snap.Documents {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			for _, p := range paths {
				fmt.Printf("  %s (%d chunks)\n", p, len(snap.Documents[p].ChunkIDs))
			}
			return nil
		},
	}
}

func newPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune [repo]",
		Short: "Remove documents for files no longer present in the tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			store, emb, err := buildStore(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = emb.Close() }()

			sc, err := scanner.New(repoArg(args), cfg.IgnoreFile, logger)
			if err != nil {
				return err
			}
			indexDir := filepath.Join(sc.Root(), cfg.IndexDir)

			unlock, err := lockIndexDir(indexDir)
			if err != nil {
				return err
			}
			defer unlock()

			manifest, _, err := sc.Scan()
			if err != nil {
				return err
			}
			snap, err := store.LoadOrCreate(indexDir)
			if err != nil {
				return err
			}

			pruned := store.Prune(snap, manifest)
			if len(pruned) == 0 {
				fmt.Println("Nothing to prune.")
				return nil
			}
			if err := store.Persist(snap, indexDir); err != nil {
				return err
			}
			for _, path := range pruned {
				fmt.Printf("Pruned: %s\n", path)
			}
			return nil
		},
	}
}

// lockIndexDir takes the exclusive writer lock for a storage location.
func lockIndexDir(indexDir string) (func(), error) {
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir %s: %w", indexDir, err)
	}
	lock := flock.New(filepath.Join(indexDir, ".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", indexDir, err)
	}
	if !locked {
		return nil, fmt.Errorf("index at %s is locked by another process", indexDir)
	}
	return func() { _ = lock.Unlock() }, nil
}
