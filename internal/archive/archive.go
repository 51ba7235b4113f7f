package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hamed0406/hostwatch/internal/domain"
)

// Store persists probe results to sqlite for history beyond the in-memory
// ring. Optional: the scheduler runs without it.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("archive open: %w", err)
	}

	// WAL keeps the applier from blocking readers.
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=NORMAL")

	schema := `
    CREATE TABLE IF NOT EXISTS probe_results (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        checked_at DATETIME NOT NULL,
        address TEXT NOT NULL,
        name TEXT,
        status TEXT NOT NULL,
        latency_ms REAL
    );

    CREATE INDEX IF NOT EXISTS idx_checked_at ON probe_results(checked_at);
    CREATE INDEX IF NOT EXISTS idx_address_checked ON probe_results(address, checked_at);
    `
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("archive schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Insert(ctx context.Context, r domain.ProbeResult) error {
	var latency any
	if ms := r.LatencyMS(); ms != nil {
		latency = *ms
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO probe_results (checked_at, address, name, status, latency_ms)
         VALUES (?, ?, ?, ?, ?)`,
		r.CheckedAt, r.Address, r.Name, string(r.Status), latency,
	)
	if err != nil {
		return fmt.Errorf("archive insert: %w", err)
	}
	return nil
}

// Recent returns archived results newer than since, most recent first.
// Empty address matches all hosts.
func (s *Store) Recent(ctx context.Context, address string, since time.Time) ([]domain.ProbeResult, error) {
	query := `SELECT checked_at, address, name, status, latency_ms
              FROM probe_results WHERE checked_at >= ?`
	args := []any{since}
	if address != "" {
		query += " AND address = ?"
		args = append(args, address)
	}
	query += " ORDER BY checked_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("archive query: %w", err)
	}
	defer rows.Close()

	var out []domain.ProbeResult
	for rows.Next() {
		var (
			r      domain.ProbeResult
			status string
			ms     sql.NullFloat64
		)
		if err := rows.Scan(&r.CheckedAt, &r.Address, &r.Name, &status, &ms); err != nil {
			return nil, fmt.Errorf("archive scan: %w", err)
		}
		r.Status = domain.Status(status)
		if ms.Valid {
			d := time.Duration(ms.Float64 * float64(time.Millisecond))
			r.Latency = &d
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Prune deletes rows older than the cutoff. Run from the scheduler's
// maintenance tick.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM probe_results WHERE checked_at < ?`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("archive prune: %w", err)
	}
	return res.RowsAffected()
}
