// Package storage archives finished investigations in a local SQLite
// database so past reports can be listed and re-read without re-running the
// analysis.
package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"tracescope/internal/investigate"
)

// Record is one archived investigation.
type Record struct {
	ID          string
	CreatedAt   time.Time
	Root        string
	Fingerprint string // trace-text digest, groups recurring errors
	FrameCount  int
	Report      string // rendered markdown
}

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens the archive database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS investigations (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP,
			root TEXT,
			fingerprint TEXT,
			frame_count INTEGER,
			report TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_investigations_fingerprint ON investigations(fingerprint);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveInvestigation archives an investigation together with its rendered
// report and returns the stored record.
func (s *SQLiteStore) SaveInvestigation(ctx context.Context, inv *investigate.Investigation, rendered string) (*Record, error) {
	rec := &Record{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Root:        inv.Root,
		Fingerprint: Fingerprint(inv.TraceText),
		FrameCount:  inv.TotalFrames,
		Report:      rendered,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO investigations (id, created_at, root, fingerprint, frame_count, report)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CreatedAt, rec.Root, rec.Fingerprint, rec.FrameCount, rec.Report)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListInvestigations returns archived records, newest first.
func (s *SQLiteStore) ListInvestigations(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, root, fingerprint, frame_count, report
		FROM investigations ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query investigations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.Root, &rec.Fingerprint, &rec.FrameCount, &rec.Report); err != nil {
			return nil, fmt.Errorf("failed to scan investigation: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetInvestigation loads one record by id.
func (s *SQLiteStore) GetInvestigation(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, root, fingerprint, frame_count, report
		FROM investigations WHERE id = ?
	`, id).Scan(&rec.ID, &rec.CreatedAt, &rec.Root, &rec.Fingerprint, &rec.FrameCount, &rec.Report)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("investigation %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Fingerprint digests trace text so recurring errors can be grouped even
// when the surrounding prose differs.
func Fingerprint(traceText string) string {
	sum := sha256.Sum256([]byte(traceText))
	return hex.EncodeToString(sum[:8])
}
