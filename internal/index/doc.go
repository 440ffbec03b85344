// Package index implements the index store: a persisted, point-in-time
// snapshot of documents and their embedded chunks, maintained incrementally
// from scan manifests.
//
// # Lifecycle
//
//	store := index.New(cfg, splitter, emb, logger)
//	snap, err := store.LoadOrCreate(dir)   // deserialize or start empty
//	stats, err := store.Update(ctx, snap, manifest, root)
//	err = store.Persist(snap, dir)         // atomic temp-write + rename
//
// Update re-embeds only documents whose content hash changed since they
// were last indexed; an unchanged tree performs zero embedding calls. A
// document that fails to read or embed is skipped for the pass, its prior
// snapshot entry left untouched.
//
// # Retention
//
// Update never removes documents for files that disappeared from the
// manifest. That retention is deliberate: stale entries keep serving
// retrieval until the caller explicitly invokes Prune(snap, manifest),
// which removes exactly the set of paths absent from the manifest.
//
// # Persistence
//
// The durable container is a single SQLite database (pure-Go driver)
// holding documents, chunk text, and embedding vectors as little-endian
// float32 blobs. Persist writes a complete database at a temporary path
// and renames it over the live file, so readers never observe a
// half-written snapshot. The store assumes a single writer; callers
// serialize Update+Persist with a file lock.
package index
