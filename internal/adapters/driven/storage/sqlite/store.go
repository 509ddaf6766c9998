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
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docsight/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docsight/internal/core/domain"
	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// Store is a SQLite-based storage that provides the document catalog
// through a wrapper type.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docsight/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docsight", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
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

// Catalog returns a DocumentCatalog interface backed by this store.
func (s *Store) Catalog() driven.DocumentCatalog {
	return &catalogStore{store: s}
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
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Catalog ====================

// catalogStore implements driven.DocumentCatalog.
type catalogStore struct {
	store *Store
}

var _ driven.DocumentCatalog = (*catalogStore)(nil)

// SaveDocument stores or updates a document record. Classification
// columns are left alone on update.
func (c *catalogStore) SaveDocument(ctx context.Context, doc domain.DocumentRecord) error {
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, page_count, metadata_path, processed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			page_count = excluded.page_count,
			metadata_path = excluded.metadata_path,
			processed_at = excluded.processed_at
	`, doc.ID, doc.Filename, doc.PageCount, doc.MetadataPath, doc.ProcessedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document record by ID.
func (c *catalogStore) GetDocument(ctx context.Context, id string) (*domain.DocumentRecord, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT id, filename, page_count, metadata_path, document_type, confidence, processed_at, classified_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return doc, err
}

// ListDocuments returns every document, newest first.
func (c *catalogStore) ListDocuments(ctx context.Context) ([]domain.DocumentRecord, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, filename, page_count, metadata_path, document_type, confidence, processed_at, classified_at
		FROM documents ORDER BY processed_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentRecord
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// RecordClassification stores the document type of a document.
func (c *catalogStore) RecordClassification(ctx context.Context, docID string, result *domain.ClassificationResult) error {
	res, err := c.store.db.ExecContext(ctx, `
		UPDATE documents SET document_type = ?, confidence = ?, classified_at = ?
		WHERE id = ?
	`, result.DocumentType, result.ConfidenceScore, time.Now().UTC(), docID)
	if err != nil {
		return fmt.Errorf("recording classification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("recording classification: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", docID, domain.ErrNotFound)
	}
	return nil
}

// RecordResult registers a persisted query result.
func (c *catalogStore) RecordResult(ctx context.Context, rec domain.ResultRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO results (doc_id, query, path, confidence, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.DocumentID, rec.Query, rec.Path, rec.Confidence, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("recording result: %w", err)
	}
	return nil
}

// ListResults returns results, newest first. Empty docID lists all.
func (c *catalogStore) ListResults(ctx context.Context, docID string) ([]domain.ResultRecord, error) {
	query := `SELECT id, doc_id, query, path, confidence, created_at FROM results`
	var args []any
	if docID != "" {
		query += ` WHERE doc_id = ?`
		args = append(args, docID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []domain.ResultRecord
	for rows.Next() {
		var rec domain.ResultRecord
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.Query, &rec.Path, &rec.Confidence, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDocument scans a document record. sql.ErrNoRows is returned unwrapped.
func scanDocument(row scanner) (*domain.DocumentRecord, error) {
	var doc domain.DocumentRecord
	var classifiedAt sql.NullTime

	if err := row.Scan(&doc.ID, &doc.Filename, &doc.PageCount, &doc.MetadataPath,
		&doc.DocumentType, &doc.Confidence, &doc.ProcessedAt, &classifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if classifiedAt.Valid {
		t := classifiedAt.Time
		doc.ClassifiedAt = &t
	}
	return &doc, nil
}
