package index

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/nodeeeeee/idea-producer/pkg/types"
)

// snapshotFile is the SQLite database holding a persisted snapshot.
const snapshotFile = "index.db"

// schemaVersion is bumped on any incompatible layout change.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE documents (
	path         TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL,
	language     TEXT NOT NULL,
	chunk_count  INTEGER NOT NULL
);

CREATE TABLE chunks (
	id          TEXT PRIMARY KEY,
	doc_path    TEXT NOT NULL REFERENCES documents(path) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	text        TEXT NOT NULL,
	token_count INTEGER NOT NULL,
	doc_hash    TEXT NOT NULL
);

CREATE INDEX idx_chunks_doc ON chunks(doc_path, seq);

CREATE TABLE embeddings (
	chunk_id TEXT PRIMARY KEY REFERENCES chunks(id) ON DELETE CASCADE,
	dim      INTEGER NOT NULL,
	vector   BLOB NOT NULL
);
`

// writeSnapshot serializes the whole snapshot into a fresh database at
// path. The caller is responsible for swapping the file into place.
func writeSnapshot(snap *Snapshot, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	meta := map[string]string{
		"schema_version": strconv.Itoa(schemaVersion),
		"embedding_dim":  strconv.Itoa(snap.Dim),
		"document_count": strconv.Itoa(snap.DocumentCount()),
		"chunk_count":    strconv.Itoa(snap.ChunkCount()),
	}
	for key, value := range meta {
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("write meta %s: %w", key, err)
		}
	}

	paths := make([]string, 0, len(snap.Documents))
	for p := range snap.Documents {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		doc := snap.Documents[p]
		if _, err := tx.Exec(
			`INSERT INTO documents (path, content_hash, language, chunk_count) VALUES (?, ?, ?, ?)`,
			doc.Path, doc.ContentHash, doc.Language, len(doc.ChunkIDs),
		); err != nil {
			return fmt.Errorf("write document %s: %w", doc.Path, err)
		}

		for _, id := range doc.ChunkIDs {
			chunk, ok := snap.Chunks[id]
			if !ok {
				return fmt.Errorf("document %s references missing chunk %s", doc.Path, id)
			}
			if _, err := tx.Exec(
				`INSERT INTO chunks (id, doc_path, seq, text, token_count, doc_hash) VALUES (?, ?, ?, ?, ?, ?)`,
				chunk.ID, chunk.DocPath, chunk.Seq, chunk.Text, chunk.TokenCount, chunk.DocHash,
			); err != nil {
				return fmt.Errorf("write chunk %s: %w", chunk.ID, err)
			}
			if _, err := tx.Exec(
				`INSERT INTO embeddings (chunk_id, dim, vector) VALUES (?, ?, ?)`,
				chunk.ID, len(chunk.Vector), serializeVector(chunk.Vector),
			); err != nil {
				return fmt.Errorf("write embedding %s: %w", chunk.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// readSnapshot loads a complete snapshot from the database at path.
func readSnapshot(path string) (*Snapshot, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	meta, err := readMeta(db)
	if err != nil {
		return nil, err
	}
	if v := meta["schema_version"]; v != strconv.Itoa(schemaVersion) {
		return nil, fmt.Errorf("unsupported schema version %q", v)
	}
	dim, err := strconv.Atoi(meta["embedding_dim"])
	if err != nil || dim <= 0 {
		return nil, fmt.Errorf("invalid embedding_dim %q in snapshot", meta["embedding_dim"])
	}

	snap := NewSnapshot(dim)

	rows, err := db.Query(`SELECT path, content_hash, language FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		doc := &types.Document{}
		if err := rows.Scan(&doc.Path, &doc.ContentHash, &doc.Language); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		snap.Documents[doc.Path] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	chunkRows, err := db.Query(`
		SELECT c.id, c.doc_path, c.seq, c.text, c.token_count, c.doc_hash, e.vector
		FROM chunks c
		INNER JOIN embeddings e ON e.chunk_id = c.id
		ORDER BY c.doc_path, c.seq`)
	if err != nil {
		return nil, fmt.Errorf("read chunks: %w", err)
	}
	defer func() { _ = chunkRows.Close() }()
	for chunkRows.Next() {
		chunk := &types.Chunk{}
		var blob []byte
		if err := chunkRows.Scan(&chunk.ID, &chunk.DocPath, &chunk.Seq, &chunk.Text,
			&chunk.TokenCount, &chunk.DocHash, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunk.Vector, err = deserializeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", chunk.ID, err)
		}
		snap.Chunks[chunk.ID] = chunk

		doc, ok := snap.Documents[chunk.DocPath]
		if !ok {
			return nil, fmt.Errorf("chunk %s references missing document %s", chunk.ID, chunk.DocPath)
		}
		doc.ChunkIDs = append(doc.ChunkIDs, chunk.ID)
	}
	if err := chunkRows.Err(); err != nil {
		return nil, err
	}

	return snap, nil
}

func readMeta(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}
	defer func() { _ = rows.Close() }()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		meta[key] = value
	}
	return meta, rows.Err()
}

// serializeVector encodes a vector as little-endian float32 bytes.
func serializeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// deserializeVector decodes a little-endian float32 blob.
func deserializeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v, nil
}
