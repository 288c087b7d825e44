package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/mediascope/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
	"github.com/custodia-labs/mediascope/internal/logger"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Ensure Store implements the interface.
var (
	_ driven.VectorStore = (*Store)(nil)
	_ driven.RunHistory  = (*Store)(nil)
)

// Store is a SQLite-based vector store. Similarity is computed in Go over
// all stored embeddings.
type Store struct {
	db       *sql.DB
	path     string
	embedder driven.EmbeddingService
}

// NewStore opens or creates the database at path and applies migrations.
// If path is empty, defaults to ~/.mediascope/index.db.
func NewStore(path string, embedder driven.EmbeddingService) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: sqlite store requires an embedder", domain.ErrInvalidConfig)
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".mediascope", "index.db")
	}

	dsn := path
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		// WAL lets readers proceed while the indexer writes.
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == MemoryPath {
		// Each connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, path: path, embedder: embedder}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Exists reports whether an index database is present at path.
func Exists(path string) bool {
	if path == MemoryPath {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add embeds and upserts documents. Existing ids are replaced.
func (s *Store) Add(ctx context.Context, documents []string, metadatas []map[string]string, ids []string) error {
	if len(documents) != len(ids) || len(metadatas) != len(ids) {
		return fmt.Errorf("%w: %d documents, %d metadatas, %d ids",
			domain.ErrInvalidInput, len(documents), len(metadatas), len(ids))
	}
	if len(ids) == 0 {
		return nil
	}

	vectors, err := s.embedder.EmbedBatch(ctx, documents)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(ids) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(ids))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO documents
			(id, document, metadata, embedding, dimensions, path, source_type, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		md := metadatas[i]
		if md == nil {
			md = map[string]string{}
		}
		mdJSON, err := json.Marshal(md)
		if err != nil {
			return fmt.Errorf("marshalling metadata for %s: %w", id, err)
		}
		_, err = stmt.ExecContext(ctx, id, documents[i], string(mdJSON),
			float32SliceToBytes(vectors[i]), len(vectors[i]),
			md[domain.MetaKeyPath], md[domain.MetaKeySourceType])
		if err != nil {
			return fmt.Errorf("inserting %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing documents: %w", err)
	}
	return nil
}

// DeleteByPath removes the documents of the given media paths.
func (s *Store) DeleteByPath(ctx context.Context, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM documents WHERE path = ?")
	if err != nil {
		return 0, fmt.Errorf("preparing delete: %w", err)
	}
	defer stmt.Close()

	removed := 0
	for _, p := range paths {
		res, err := stmt.ExecContext(ctx, p)
		if err != nil {
			return 0, fmt.Errorf("deleting %s: %w", p, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("deleting %s: %w", p, err)
		}
		removed += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing delete: %w", err)
	}
	return removed, nil
}

// scored is a candidate row with its cosine distance.
type scored struct {
	id       string
	document string
	metadata map[string]string
	distance float64
}

// Query embeds text and returns the topK nearest documents by cosine
// distance, nearest first.
func (s *Store) Query(ctx context.Context, text string, topK int) (*domain.VectorQueryResult, error) {
	result := &domain.VectorQueryResult{}
	if topK <= 0 {
		return result, nil
	}

	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, document, metadata, embedding FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var hits []scored
	skipped := 0
	for rows.Next() {
		var (
			id, document, mdJSON string
			blob                 []byte
		)
		if err := rows.Scan(&id, &document, &mdJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		vec := bytesToFloat32Slice(blob)
		if len(vec) != len(query) {
			skipped++
			continue
		}
		var md map[string]string
		if err := json.Unmarshal([]byte(mdJSON), &md); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata for %s: %w", id, err)
		}
		hits = append(hits, scored{id: id, document: document, metadata: md, distance: CosineDistance(query, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	if skipped > 0 {
		logger.Warn("skipped %d documents embedded with different dimensions; rebuild the index", skipped)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	for _, h := range hits {
		result.IDs = append(result.IDs, h.id)
		result.Distances = append(result.Distances, h.distance)
		result.Documents = append(result.Documents, h.document)
		result.Metadatas = append(result.Metadatas, h.metadata)
	}
	return result, nil
}

// Persist checkpoints the WAL and records the index run.
func (s *Store) Persist(ctx context.Context) error {
	n, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO index_runs (id, documents, model, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), n, s.embedder.ModelName(), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("recording index run: %w", err)
	}
	if s.path == MemoryPath {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpointing: %w", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Reset removes every document.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}

// LastRun returns the most recent index run, or nil when none.
func (s *Store) LastRun(ctx context.Context) (*domain.IndexRun, error) {
	var (
		run     domain.IndexRun
		created string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, documents, model, created_at FROM index_runs ORDER BY rowid DESC LIMIT 1").
		Scan(&run.ID, &run.Documents, &run.Model, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading index runs: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		run.CreatedAt = t
	}
	return &run, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_documents.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// CosineDistance returns 1 - cosine similarity. Zero vectors are at
// distance 1 from everything.
func CosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
