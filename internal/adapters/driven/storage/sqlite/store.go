package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/SubikshaRamesh/AegisRAG/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/domain"
	"github.com/SubikshaRamesh/AegisRAG/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// chunk and history store interfaces through wrapper types. One database
// file holds both; operations run on short-lived connections from the
// pool, with WAL mode for concurrent readers.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("%w: data directory required", domain.ErrInvalidInput)
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "chunks.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// HistoryStore returns a HistoryStore interface backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
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
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
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

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// SaveChunks inserts chunks with insert-or-ignore semantics in a single
// transaction. A duplicate chunk_id means "already ingested": the new
// payload is discarded, never overwritten. Returns the number of rows
// actually inserted.
func (s *chunkStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) (int, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO chunks (chunk_id, text, source_type, source_file, page_number, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, chunk := range chunks {
		res, err := stmt.ExecContext(ctx, chunk.ID, chunk.Payload.Value(),
			chunk.SourceType, chunk.SourceFile,
			nullInt(chunk.PageNumber), nullFloat(chunk.Timestamp))
		if err != nil {
			return 0, fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting inserted rows: %w", err)
		}
		inserted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return inserted, nil
}

// GetChunk retrieves a chunk by id.
func (s *chunkStore) GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT chunk_id, text, source_type, source_file, page_number, timestamp
		FROM chunks WHERE chunk_id = ?
	`, chunkID)

	chunk, err := scanChunk(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting chunk %s: %w", chunkID, err)
	}
	return chunk, nil
}

// GetChunksBySource returns all chunks for a source file.
func (s *chunkStore) GetChunksBySource(ctx context.Context, sourceFile string) ([]domain.Chunk, error) {
	return s.queryChunks(ctx, `
		SELECT chunk_id, text, source_type, source_file, page_number, timestamp
		FROM chunks WHERE source_file = ?
	`, sourceFile)
}

// GetAllChunks returns every stored chunk.
func (s *chunkStore) GetAllChunks(ctx context.Context) ([]domain.Chunk, error) {
	return s.queryChunks(ctx, `
		SELECT chunk_id, text, source_type, source_file, page_number, timestamp
		FROM chunks
	`)
}

// DeleteChunksBySource deletes all chunks for a source file.
func (s *chunkStore) DeleteChunksBySource(ctx context.Context, sourceFile string) (int, error) {
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM chunks WHERE source_file = ?", sourceFile)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks for %s: %w", sourceFile, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted rows: %w", err)
	}
	return int(rows), nil
}

func (s *chunkStore) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// scanner abstracts sql.Row and sql.Rows for scanChunk.
type scanner interface {
	Scan(dest ...any) error
}

// scanChunk reads one chunk row, reconstructing the payload variant from
// the source type: raw visual chunks store a media reference in the text
// column, everything else stores literal text.
func scanChunk(row scanner) (*domain.Chunk, error) {
	var (
		chunk      domain.Chunk
		text       string
		pageNumber sql.NullInt64
		timestamp  sql.NullFloat64
	)

	if err := row.Scan(&chunk.ID, &text, &chunk.SourceType, &chunk.SourceFile,
		&pageNumber, &timestamp); err != nil {
		return nil, err
	}

	if domain.PayloadKindFor(chunk.SourceType) == domain.PayloadMediaReference {
		chunk.Payload = domain.MediaPayload(text)
	} else {
		chunk.Payload = domain.TextPayload(text)
	}

	if pageNumber.Valid {
		page := int(pageNumber.Int64)
		chunk.PageNumber = &page
	}
	if timestamp.Valid {
		ts := timestamp.Float64
		chunk.Timestamp = &ts
	}

	return &chunk, nil
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
