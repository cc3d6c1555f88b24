// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists which accessions have already been resolved, so
// batch runs can skip them. Records are keyed by (database, entrez_id);
// the resolution core never touches this directly.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/maarten-devries/SRAgent/pkg/types"
)

// Store manages the processed-accession SQLite database.
type Store struct {
	db *sql.DB
}

// Record is one processed accession row.
type Record struct {
	Database    string
	EntrezID    string
	Accession   string
	PMID        string
	PMCID       string
	PreprintDOI string
	ProcessedAt time.Time
}

// Open opens or creates the database at path, creating the schema when
// missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS processed (
		database_name TEXT NOT NULL,
		entrez_id TEXT NOT NULL,
		accession TEXT,
		pmid TEXT,
		pmcid TEXT,
		preprint_doi TEXT,
		processed_at TEXT NOT NULL,
		PRIMARY KEY (database_name, entrez_id)
	)`)
	return err
}

// IsProcessed reports whether a (database, entrez_id) pair has already been
// resolved.
func (s *Store) IsProcessed(ctx context.Context, database, entrezID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed WHERE database_name = ? AND entrez_id = ?`,
		database, entrezID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying processed: %w", err)
	}
	return true, nil
}

// MarkProcessed upserts the resolution outcome for a (database, entrez_id)
// pair.
func (s *Store) MarkProcessed(ctx context.Context, database, entrezID, accession string, res types.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO processed (database_name, entrez_id, accession, pmid, pmcid, preprint_doi, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(database_name, entrez_id) DO UPDATE SET
			accession = excluded.accession,
			pmid = excluded.pmid,
			pmcid = excluded.pmcid,
			preprint_doi = excluded.preprint_doi,
			processed_at = excluded.processed_at`,
		database, entrezID, accession, res.PMID, res.PMCID, res.PreprintDOI,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("marking processed: %w", err)
	}
	return nil
}

// Get returns the stored record for a pair, or nil when absent.
func (s *Store) Get(ctx context.Context, database, entrezID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT database_name, entrez_id, accession, pmid, pmcid, preprint_doi, processed_at
		 FROM processed WHERE database_name = ? AND entrez_id = ?`,
		database, entrezID)

	var rec Record
	var processedAt string
	err := row.Scan(&rec.Database, &rec.EntrezID, &rec.Accession, &rec.PMID, &rec.PMCID, &rec.PreprintDOI, &processedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading processed record: %w", err)
	}
	rec.ProcessedAt, _ = time.Parse(time.RFC3339, processedAt)
	return &rec, nil
}
