package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/models"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS warns (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	subject_id TEXT    NOT NULL CHECK(length(subject_id) > 0),
	issuer_id  TEXT,
	reason     TEXT    NOT NULL,
	issued_at  INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_warns_subject ON warns(subject_id);
CREATE INDEX IF NOT EXISTS idx_warns_expires ON warns(expires_at);
CREATE INDEX IF NOT EXISTS idx_warns_subject_expires ON warns(subject_id, expires_at);
`

// SQLiteWarnStore keeps warns in a single SQLite file.
type SQLiteWarnStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
// An empty path or ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteWarnStore, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open DB: %w", err)
	}
	// one connection: writers serialise and :memory: stays a single database
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	return &SQLiteWarnStore{db: db, path: path}, nil
}

func (s *SQLiteWarnStore) Name() string { return KindSQLite }

func (s *SQLiteWarnStore) Insert(ctx context.Context, w models.Warn) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO warns (subject_id, issuer_id, reason, issued_at, expires_at) VALUES (?, ?, ?, ?, ?)",
		w.SubjectID, nullableIssuer(w), w.Reason, toMillis(w.IssuedAt), toMillis(w.ExpiresAt))
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert warn: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteWarnStore) CountActive(ctx context.Context, subjectID string, now time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM warns WHERE subject_id = ? AND expires_at > ?",
		subjectID, toMillis(now)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count active: %w", err)
	}
	return n, nil
}

func (s *SQLiteWarnStore) ListActive(ctx context.Context, subjectID string, now time.Time) ([]models.Warn, error) {
	return s.query(ctx,
		"SELECT "+warnColumns+" FROM warns WHERE subject_id = ? AND expires_at > ? ORDER BY issued_at ASC, id ASC",
		subjectID, toMillis(now))
}

func (s *SQLiteWarnStore) ListHistory(ctx context.Context, subjectID string) ([]models.Warn, error) {
	return s.query(ctx,
		"SELECT "+warnColumns+" FROM warns WHERE subject_id = ? ORDER BY issued_at DESC, id DESC",
		subjectID)
}

func (s *SQLiteWarnStore) Recent(ctx context.Context, limit int) ([]models.Warn, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.query(ctx, "SELECT "+warnColumns+" FROM warns ORDER BY id DESC LIMIT ?", limit)
}

func (s *SQLiteWarnStore) DeleteByID(ctx context.Context, id int64) (int, error) {
	return s.exec(ctx, "DELETE FROM warns WHERE id = ?", id)
}

func (s *SQLiteWarnStore) DeleteBySubject(ctx context.Context, subjectID string) (int, error) {
	return s.exec(ctx, "DELETE FROM warns WHERE subject_id = ?", subjectID)
}

func (s *SQLiteWarnStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return s.exec(ctx, "DELETE FROM warns WHERE expires_at <= ?", toMillis(now))
}

func (s *SQLiteWarnStore) DeleteExpiredForSubject(ctx context.Context, subjectID string, now time.Time) (int, error) {
	return s.exec(ctx, "DELETE FROM warns WHERE subject_id = ? AND expires_at <= ?", subjectID, toMillis(now))
}

func (s *SQLiteWarnStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	err := s.db.PingContext(ctx)
	return time.Since(start), err
}

func (s *SQLiteWarnStore) Stats(ctx context.Context, now time.Time) (models.WarnStats, error) {
	var st models.WarnStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN expires_at > ? THEN 1 ELSE 0 END), 0),
		       COUNT(DISTINCT subject_id)
		FROM warns`, toMillis(now)).Scan(&st.Total, &st.Active, &st.Subjects)
	if err != nil {
		return models.WarnStats{}, fmt.Errorf("sqlite: stats: %w", err)
	}
	st.Expired = st.Total - st.Active
	return st, nil
}

func (s *SQLiteWarnStore) Verify(ctx context.Context) error {
	var result string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("sqlite: integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("sqlite: integrity check: %s", result)
	}

	var bad int64
	if err := s.db.QueryRowContext(ctx, invariantViolations).Scan(&bad); err != nil {
		return fmt.Errorf("sqlite: verify warns: %w", err)
	}
	return checkViolations(bad)
}

func (s *SQLiteWarnStore) Reset(ctx context.Context) (int, error) {
	return s.exec(ctx, "DELETE FROM warns")
}

// Close closes the database connection.
func (s *SQLiteWarnStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteWarnStore) query(ctx context.Context, query string, args ...any) ([]models.Warn, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query warns: %w", err)
	}
	defer rows.Close()

	var warns []models.Warn
	for rows.Next() {
		w, err := scanWarn(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan warn: %w", err)
		}
		warns = append(warns, w)
	}
	return warns, rows.Err()
}

func (s *SQLiteWarnStore) exec(ctx context.Context, query string, args ...any) (int, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
