package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/healthlang/ilera/common/logger"
	"github.com/healthlang/ilera/schema"
)

// Recorder persists finished queries for auditing. Record must never
// block or fail the request path; implementations log their own
// errors.
type Recorder interface {
	Record(ctx context.Context, rec schema.HistoryRecord)
	Close() error
}

// NopRecorder discards records. Used when history is disabled and in
// tests.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, rec schema.HistoryRecord) {}
func (NopRecorder) Close() error                                         { return nil }

const createTableSQL = `
CREATE TABLE IF NOT EXISTS query_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	query TEXT NOT NULL,
	response_text TEXT NOT NULL DEFAULT '',
	lang TEXT NOT NULL,
	safety_level TEXT NOT NULL,
	sources TEXT NOT NULL DEFAULT '[]',
	success INTEGER NOT NULL,
	latency_ms INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_query_history_created ON query_history(created_at);`

// SQLiteRecorder stores history rows in a local SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	log logger.Logger
}

// NewSQLiteRecorder opens (and migrates) the database at path.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &SQLiteRecorder{db: db, log: logger.NewWithComponent("history")}, nil
}

func (r *SQLiteRecorder) Record(ctx context.Context, rec schema.HistoryRecord) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	sources, err := json.Marshal(rec.Sources)
	if err != nil {
		sources = []byte("[]")
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO query_history (request_id, user_id, query, response_text, lang, safety_level, sources, success, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.UserID, rec.Query, rec.ResponseText, rec.Lang, rec.SafetyLevel, string(sources), rec.Success, rec.LatencyMS, rec.CreatedAt)
	if err != nil {
		r.log.Warnf("history insert failed: %v", err)
	}
}

// Recent returns the newest n records, newest first.
func (r *SQLiteRecorder) Recent(ctx context.Context, n int) ([]schema.HistoryRecord, error) {
	if n <= 0 {
		n = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT request_id, user_id, query, response_text, lang, safety_level, sources, success, latency_ms, created_at
		 FROM query_history ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []schema.HistoryRecord
	for rows.Next() {
		var rec schema.HistoryRecord
		var sources string
		if err := rows.Scan(&rec.RequestID, &rec.UserID, &rec.Query, &rec.ResponseText, &rec.Lang, &rec.SafetyLevel, &sources, &rec.Success, &rec.LatencyMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &rec.Sources); err != nil {
			r.log.Warnf("history row %s has malformed sources: %v", rec.RequestID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
