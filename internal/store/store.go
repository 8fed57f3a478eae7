// Package store provides SQLite persistence for the local analysis history.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/abelbrown/truthlens/internal/analysis"
)

// PreviewLen is how much of the submitted content is kept.
const PreviewLen = 500

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("analysis not found")

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Record is one successful analysis kept locally.
type Record struct {
	ID          string
	ContentHash string // xxhash of type + content; re-analyzing the same input replaces the row
	ContentType string // "text", "url", "image"
	Preview     string
	TrustScore  float64
	Grade       string
	Result      []byte // raw response JSON
	CreatedAt   time.Time
}

// Response decodes the stored payload.
func (r Record) Response() (analysis.Response, error) {
	return analysis.DecodeResponse(r.Result)
}

// ContentHash fingerprints a request.
func ContentHash(req analysis.Request) string {
	h := xxhash.New()
	h.WriteString(req.ContentType())
	h.WriteString("\x00")
	h.WriteString(req.Content())
	return strconv.FormatUint(h.Sum64(), 16)
}

// RecordFrom builds a Record for a completed analysis. resp must carry an
// overall score.
func RecordFrom(req analysis.Request, resp analysis.Response, at time.Time) (Record, error) {
	if err := resp.Complete(); err != nil {
		return Record{}, err
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return Record{}, fmt.Errorf("encode result: %w", err)
	}
	return Record{
		ID:          uuid.NewString(),
		ContentHash: ContentHash(req),
		ContentType: req.ContentType(),
		Preview:     req.Preview(PreviewLen),
		TrustScore:  resp.OverallTrustScore.Score,
		Grade:       resp.OverallTrustScore.Grade,
		Result:      data,
		CreatedAt:   at,
	}, nil
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL UNIQUE,
		content_type TEXT NOT NULL,
		preview TEXT NOT NULL,
		trust_score REAL NOT NULL,
		grade TEXT NOT NULL,
		result TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Save stores rec. A record with the same content hash is replaced in place,
// keeping its original id. Returns the id of the stored row.
// Thread-safe: acquires write lock.
func (s *Store) Save(rec Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	var id string
	err := s.db.QueryRow(`
		INSERT INTO analyses (
			id, content_hash, content_type, preview, trust_score, grade, result, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			trust_score = excluded.trust_score,
			grade = excluded.grade,
			result = excluded.result,
			created_at = excluded.created_at
		RETURNING id
	`,
		rec.ID,
		rec.ContentHash,
		rec.ContentType,
		rec.Preview,
		rec.TrustScore,
		rec.Grade,
		string(rec.Result),
		rec.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("save analysis: %w", err)
	}
	return id, nil
}

// Recent returns up to limit records, newest first.
// Thread-safe: acquires read lock.
func (s *Store) Recent(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(`
		SELECT id, content_hash, content_type, preview, trust_score, grade, result, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
}

// Get returns one record by id or by unique id prefix.
// Thread-safe: acquires read lock.
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs, err := s.queryRecords(`
		SELECT id, content_hash, content_type, preview, trust_score, grade, result, created_at
		FROM analyses
		WHERE id = ? OR id LIKE ? || '%'
		LIMIT 2
	`, id, id)
	if err != nil {
		return Record{}, err
	}
	for _, r := range recs {
		if r.ID == id {
			return r, nil
		}
	}
	switch len(recs) {
	case 0:
		return Record{}, ErrNotFound
	case 1:
		return recs[0], nil
	}
	return Record{}, fmt.Errorf("id prefix %q is ambiguous", id)
}

// Count returns the number of stored records.
// Thread-safe: acquires read lock.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM analyses").Scan(&n)
	return n, err
}

// Clear deletes every record and returns how many were removed.
// Thread-safe: acquires write lock.
func (s *Store) Clear() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM analyses")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// queryRecords executes a query and scans results into Records.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) queryRecords(query string, args ...any) ([]Record, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var r Record
		var result string
		err := rows.Scan(
			&r.ID,
			&r.ContentHash,
			&r.ContentType,
			&r.Preview,
			&r.TrustScore,
			&r.Grade,
			&result,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		r.Result = []byte(result)
		recs = append(recs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}
