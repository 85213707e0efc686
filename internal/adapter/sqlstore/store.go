// Package sqlstore is a SQLite-backed document store. It keeps the index
// artifact in a single-row table so vectors and chunk map are replaced
// together.
package sqlstore

import (
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
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"finrag/internal/adapter/sqlstore/migrations"
	"finrag/internal/adapter/vectorindex"
	"finrag/internal/domain"
)

// Store implements port.DocumentStore and port.IndexArtifactStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the database at path and applies pending migrations.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
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
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
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

// Put stores a raw document, replacing any previous document of the same name
// along with its derived data.
func (s *Store) Put(doc domain.RawDocument) error {
	content := doc.Content
	if content == nil {
		content = []byte{}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM derived WHERE filename = ?`, doc.Filename); err != nil {
		return fmt.Errorf("dropping derived data: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO documents (filename, content_type, content, ingested_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			content_type = excluded.content_type,
			content = excluded.content,
			ingested_at = excluded.ingested_at
	`, doc.Filename, doc.ContentType, content, doc.IngestedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return tx.Commit()
}

func (s *Store) Get(filename string) (domain.RawDocument, error) {
	doc := domain.RawDocument{Filename: filename}
	var ingestedAt int64
	err := s.db.QueryRow(
		`SELECT content_type, content, ingested_at FROM documents WHERE filename = ?`, filename,
	).Scan(&doc.ContentType, &doc.Content, &ingestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RawDocument{}, fmt.Errorf("%w: %s", domain.ErrNotFound, filename)
	}
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("loading document: %w", err)
	}
	doc.IngestedAt = time.Unix(0, ingestedAt)
	return doc, nil
}

func (s *Store) PutDerived(filename string, records []domain.TransactionRecord, narration string) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshalling records: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM documents WHERE filename = ?`, filename).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, filename)
	}

	_, err = tx.Exec(`
		INSERT INTO derived (filename, records, narration) VALUES (?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET records = excluded.records, narration = excluded.narration
	`, filename, string(data), narration)
	if err != nil {
		return fmt.Errorf("saving derived data: %w", err)
	}
	return tx.Commit()
}

func (s *Store) Records(filename string) ([]domain.TransactionRecord, error) {
	var data string
	err := s.db.QueryRow(`SELECT records FROM derived WHERE filename = ?`, filename).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: records for %s", domain.ErrNotFound, filename)
	}
	if err != nil {
		return nil, err
	}
	var records []domain.TransactionRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("unmarshalling records: %w", err)
	}
	return records, nil
}

func (s *Store) Narration(filename string) (string, error) {
	var text string
	err := s.db.QueryRow(`SELECT narration FROM derived WHERE filename = ?`, filename).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: narration for %s", domain.ErrNotFound, filename)
	}
	return text, err
}

func (s *Store) ListFilenames() ([]string, error) {
	rows, err := s.db.Query(`SELECT filename FROM documents ORDER BY filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) ListNarrations() ([]domain.Narration, error) {
	rows, err := s.db.Query(`SELECT filename, narration FROM derived ORDER BY filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Narration
	for rows.Next() {
		var n domain.Narration
		if err := rows.Scan(&n.Filename, &n.Text); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) Delete(filename string) error {
	res, err := s.db.Exec(`DELETE FROM documents WHERE filename = ?`, filename)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, filename)
	}
	return nil
}

func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM derived; DELETE FROM documents; DELETE FROM index_artifact;`)
	return err
}

func (s *Store) SaveIndex(art domain.IndexArtifact) error {
	if len(art.Vectors) != len(art.ChunkMap) {
		return fmt.Errorf("%w: %d vectors but %d chunk map entries", domain.ErrPersistence, len(art.Vectors), len(art.ChunkMap))
	}
	chunkMap, err := json.Marshal(art.ChunkMap)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO index_artifact (id, version, model, dimension, count, vectors, chunk_map, built_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
	`, art.Version, art.Model, art.Dimension, len(art.Vectors),
		vectorindex.EncodeVectors(art.Vectors, art.Dimension), string(chunkMap), art.BuiltAt.UnixNano())
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (s *Store) LoadIndex() (domain.IndexArtifact, error) {
	var (
		art      domain.IndexArtifact
		count    int
		blob     []byte
		chunkMap string
		builtAt  int64
	)
	err := s.db.QueryRow(`
		SELECT version, model, dimension, count, vectors, chunk_map, built_at
		FROM index_artifact WHERE id = 1
	`).Scan(&art.Version, &art.Model, &art.Dimension, &count, &blob, &chunkMap, &builtAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.IndexArtifact{}, domain.ErrIndexMissing
	}
	if err != nil {
		return domain.IndexArtifact{}, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	if err := json.Unmarshal([]byte(chunkMap), &art.ChunkMap); err != nil {
		return domain.IndexArtifact{}, fmt.Errorf("%w: chunk map: %w", domain.ErrPersistence, err)
	}
	if len(art.ChunkMap) != count {
		return domain.IndexArtifact{}, fmt.Errorf("%w: chunk map has %d entries, row says %d", domain.ErrPersistence, len(art.ChunkMap), count)
	}
	art.Vectors, err = vectorindex.DecodeVectors(blob, count, art.Dimension)
	if err != nil {
		return domain.IndexArtifact{}, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	art.BuiltAt = time.Unix(0, builtAt)
	return art, nil
}

func (s *Store) DeleteIndex() error {
	_, err := s.db.Exec(`DELETE FROM index_artifact`)
	return err
}
