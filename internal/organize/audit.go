// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package organize

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/shelfmark/pkg/types"
)

const auditDBFile = "audit.db"

// AuditStore records every rename into a SQLite database inside the
// backup folder, so any run can be traced and reversed by hand.
type AuditStore struct {
	db    *sql.DB
	runID string
}

// OpenAudit opens or creates the audit database under dir and starts a
// new run row. The schema is created on first use.
func OpenAudit(dir string) (*AuditStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	dbPath := filepath.Join(dir, auditDBFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	s := &AuditStore{db: db, runID: uuid.NewString()}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}
	if err := s.beginRun(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database connection.
func (s *AuditStore) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// RunID identifies this invocation in the audit trail.
func (s *AuditStore) RunID() string {
	if s == nil {
		return ""
	}
	return s.runID
}

func (s *AuditStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			original_path TEXT NOT NULL,
			new_path TEXT,
			backup_path TEXT,
			outcome TEXT NOT NULL,
			reason TEXT,
			source TEXT,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_original ON documents(original_path)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (s *AuditStore) beginRun() error {
	_, err := s.db.Exec(`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		s.runID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Record appends one document's disposition to the audit trail. A nil
// store is a no-op so dry runs skip auditing without branching.
func (s *AuditStore) Record(res Result) error {
	if s == nil {
		return nil
	}
	_, err := s.db.Exec(`INSERT INTO documents
		(run_id, original_path, new_path, backup_path, outcome, reason, source, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, res.OriginalPath, res.NewPath, res.BackupPath,
		string(res.Outcome), string(res.Reason), string(res.Source),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording document: %w", err)
	}
	return nil
}

// AuditEntry is one row of the audit trail.
type AuditEntry struct {
	RunID        string
	OriginalPath string
	NewPath      string
	BackupPath   string
	Outcome      types.Outcome
	Reason       types.FailureReason
}

// History returns the audit entries for a given original path, newest
// first.
func (s *AuditStore) History(originalPath string) ([]AuditEntry, error) {
	rows, err := s.db.Query(`SELECT run_id, original_path,
			COALESCE(new_path, ''), COALESCE(backup_path, ''),
			outcome, COALESCE(reason, '')
		FROM documents WHERE original_path = ? ORDER BY rowid DESC`, originalPath)
	if err != nil {
		return nil, fmt.Errorf("querying audit trail: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var outcome, reason string
		if err := rows.Scan(&e.RunID, &e.OriginalPath, &e.NewPath, &e.BackupPath, &outcome, &reason); err != nil {
			return nil, fmt.Errorf("scanning audit row: %w", err)
		}
		e.Outcome = types.Outcome(outcome)
		e.Reason = types.FailureReason(reason)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
