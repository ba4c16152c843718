// Package history keeps a local audit log of apply and delete
// invocations. The log is purely observational: nothing in the
// convergence path ever reads it.
package history

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// Record is one completed apply or delete invocation.
type Record struct {
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	Kind       string    `json:"kind"` // zone, vnet or subnet
	ResourceID string    `json:"resource_id"`
	Action     string    `json:"action"` // apply or delete
	Check      bool      `json:"check"`
	Changed    bool      `json:"changed"`
	Msg        string    `json:"msg"`
}

// Store persists invocation records in a SQLite database under the
// data directory.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database in dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "history.db")

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, path: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}
	_, err = s.db.Exec(string(schema))
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one invocation. A zero ID or timestamp is filled in.
func (s *Store) Record(rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO invocations (id, recorded_at, kind, resource_id, action, check_mode, changed, msg)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.RecordedAt.Format(time.RFC3339), rec.Kind, rec.ResourceID, rec.Action,
		boolInt(rec.Check), boolInt(rec.Changed), rec.Msg)
	if err != nil {
		return fmt.Errorf("inserting invocation: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first. A non-positive
// limit returns everything.
func (s *Store) List(limit int) ([]Record, error) {
	query := `
		SELECT id, recorded_at, kind, resource_id, action, check_mode, changed, msg
		FROM invocations
		ORDER BY recorded_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying invocations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var recordedAt string
		var check, changed int
		if err := rows.Scan(&rec.ID, &recordedAt, &rec.Kind, &rec.ResourceID, &rec.Action, &check, &changed, &rec.Msg); err != nil {
			return nil, fmt.Errorf("scanning invocation: %w", err)
		}
		rec.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt)
		rec.Check = check != 0
		rec.Changed = changed != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
