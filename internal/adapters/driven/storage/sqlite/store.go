package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/animerec/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/animerec/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
)

// DBFileName is the database file created inside the persist directory.
const DBFileName = "index.db"

// Verify interface compliance.
var (
	_ driven.IndexOpener     = (*Opener)(nil)
	_ driven.SimilarityIndex = (*IndexStore)(nil)
)

// Opener opens SQLite-backed collections.
type Opener struct{}

// NewOpener creates a new SQLite index opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open implements driven.IndexOpener.
func (o *Opener) Open(ctx context.Context, dir, collection string, create bool) (driven.SimilarityIndex, error) {
	s, err := Open(ctx, dir, collection, create)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// IndexStore is one collection inside the SQLite index database.
type IndexStore struct {
	db         *sql.DB
	path       string
	collection string

	mu   sync.RWMutex
	dims int
}

// Open opens the collection in dir/index.db. With create set, the directory,
// database and collection are created as needed. Without it, a missing
// database or collection yields domain.ErrNotFound.
func Open(ctx context.Context, dir, collection string, create bool) (*IndexStore, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection name is empty: %w", domain.ErrInvalidInput)
	}

	dbPath := filepath.Join(dir, DBFileName)
	if create {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	} else if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("index database %s: %w", dbPath, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("checking index database: %w", err)
	}

	// WAL lets readers proceed while a build is writing.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &IndexStore{
		db:         db,
		path:       dbPath,
		collection: collection,
	}

	if err := s.migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if create {
		_, err = db.ExecContext(ctx,
			`INSERT INTO collections (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, collection)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("creating collection: %w", err)
		}
	}

	err = db.QueryRowContext(ctx,
		`SELECT dimensions FROM collections WHERE name = ?`, collection).Scan(&s.dims)
	if errors.Is(err, sql.ErrNoRows) {
		db.Close()
		return nil, fmt.Errorf("collection %q: %w", collection, domain.ErrNotFound)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading collection: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *IndexStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *IndexStore) Path() string {
	return s.path
}

// Dimensions returns the vector size of the collection, or 0 before the first insert.
func (s *IndexStore) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dims
}

// migrate applies embedded migrations newer than the recorded schema version.
func (s *IndexStore) migrate(ctx context.Context, fsys embed.FS) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
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
		// "001_initial.up.sql" -> 1
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

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("starting migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// Insert appends entries in a single transaction. The first insert fixes the
// collection's dimension; later vectors must match it.
func (s *IndexStore) Insert(ctx context.Context, entries []driven.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	dim := len(entries[0].Embedding)
	for i, e := range entries {
		if len(e.Embedding) == 0 || len(e.Embedding) != dim {
			return fmt.Errorf("entry %d has dimension %d, expected %d: %w",
				i, len(e.Embedding), dim, domain.ErrInvalidInput)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims != 0 && s.dims != dim {
		return fmt.Errorf("embedding dimension %d does not match collection dimension %d: %w",
			dim, s.dims, domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if s.dims == 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE collections SET dimensions = ? WHERE name = ?`, dim, s.collection); err != nil {
			return fmt.Errorf("recording dimensions: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, collection, document_id, position, content, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		id := e.Chunk.ID
		if id == "" {
			id = uuid.New().String()
		}
		meta, err := marshalMetadata(e.Chunk.Metadata)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, id, s.collection, e.Chunk.DocumentID,
			e.Chunk.Position, e.Chunk.Content, meta, vector.Encode(e.Embedding)); err != nil {
			return fmt.Errorf("inserting entry %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entries: %w", err)
	}
	s.dims = dim
	return nil
}

// Query ranks every entry of the collection by cosine distance to vec and
// returns the k nearest, nearest first.
func (s *IndexStore) Query(ctx context.Context, vec []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidInput)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("query vector is empty: %w", domain.ErrInvalidInput)
	}
	if dims := s.Dimensions(); dims != 0 && dims != len(vec) {
		return nil, fmt.Errorf("query dimension %d does not match collection dimension %d: %w",
			len(vec), dims, domain.ErrInvalidInput)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, embedding FROM entries WHERE collection = ? ORDER BY seq`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("scanning entries: %w", err)
	}
	defer rows.Close()

	var scored []vector.Scored
	for rows.Next() {
		var (
			seq  int
			blob []byte
		)
		if err := rows.Scan(&seq, &blob); err != nil {
			return nil, fmt.Errorf("reading entry: %w", err)
		}
		emb, err := vector.Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding entry %d: %w", seq, err)
		}
		d, err := vector.CosineDistance(vec, emb)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", seq, err)
		}
		scored = append(scored, vector.Scored{Index: seq, Distance: d})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	top := vector.TopK(scored, k)
	if len(top) == 0 {
		return nil, nil
	}
	return s.fetch(ctx, top)
}

// fetch loads the chunk rows for the ranked sequence numbers.
func (s *IndexStore) fetch(ctx context.Context, top []vector.Scored) ([]domain.RetrievedChunk, error) {
	placeholders := make([]string, len(top))
	args := make([]any, len(top))
	for i, sc := range top {
		placeholders[i] = "?"
		args[i] = sc.Index
	}

	//nolint:gosec // G202: only placeholders are concatenated
	query := `SELECT seq, id, document_id, position, content, metadata FROM entries WHERE seq IN (` +
		strings.Join(placeholders, ",") + `)`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching entries: %w", err)
	}
	defer rows.Close()

	bySeq := make(map[int]domain.Chunk, len(top))
	for rows.Next() {
		var (
			seq  int
			c    domain.Chunk
			meta string
		)
		if err := rows.Scan(&seq, &c.ID, &c.DocumentID, &c.Position, &c.Content, &meta); err != nil {
			return nil, fmt.Errorf("reading entry: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &c.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata of %s: %w", c.ID, err)
		}
		bySeq[seq] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	out := make([]domain.RetrievedChunk, 0, len(top))
	for _, sc := range top {
		c, ok := bySeq[sc.Index]
		if !ok {
			continue
		}
		out = append(out, domain.RetrievedChunk{Chunk: c, Distance: sc.Distance})
	}
	return out, nil
}

// Probe counts entries in the collection, stopping at limit.
// A non-positive limit counts everything.
func (s *IndexStore) Probe(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = -1
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (SELECT 1 FROM entries WHERE collection = ? LIMIT ?)`,
		s.collection, limit).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("probing collection: %w", err)
	}
	return n, nil
}

func marshalMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}
	return string(b), nil
}
