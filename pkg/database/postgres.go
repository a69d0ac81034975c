package database

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS warns (
	id         BIGSERIAL PRIMARY KEY,
	subject_id TEXT   NOT NULL CHECK (length(subject_id) > 0),
	issuer_id  TEXT,
	reason     TEXT   NOT NULL,
	issued_at  BIGINT NOT NULL,
	expires_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_warns_subject ON warns (subject_id);
CREATE INDEX IF NOT EXISTS idx_warns_expires ON warns (expires_at);
CREATE INDEX IF NOT EXISTS idx_warns_subject_expires ON warns (subject_id, expires_at);
`

// PostgresWarnStore keeps warns in PostgreSQL through a pgx pool.
type PostgresWarnStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to url and runs migrations.
func OpenPostgres(ctx context.Context, url string) (*PostgresWarnStore, error) {
	if url == "" {
		return nil, fmt.Errorf("postgres: POSTGRES_URL is empty")
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return &PostgresWarnStore{pool: pool}, nil
}

func (s *PostgresWarnStore) Name() string { return KindPostgres }

func (s *PostgresWarnStore) Insert(ctx context.Context, w models.Warn) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		"INSERT INTO warns (subject_id, issuer_id, reason, issued_at, expires_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		w.SubjectID, w.IssuerID, w.Reason, toMillis(w.IssuedAt), toMillis(w.ExpiresAt)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert warn: %w", err)
	}
	return id, nil
}

func (s *PostgresWarnStore) CountActive(ctx context.Context, subjectID string, now time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM warns WHERE subject_id = $1 AND expires_at > $2",
		subjectID, toMillis(now)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count active: %w", err)
	}
	return n, nil
}

func (s *PostgresWarnStore) ListActive(ctx context.Context, subjectID string, now time.Time) ([]models.Warn, error) {
	return s.query(ctx,
		"SELECT "+warnColumns+" FROM warns WHERE subject_id = $1 AND expires_at > $2 ORDER BY issued_at ASC, id ASC",
		subjectID, toMillis(now))
}

func (s *PostgresWarnStore) ListHistory(ctx context.Context, subjectID string) ([]models.Warn, error) {
	return s.query(ctx,
		"SELECT "+warnColumns+" FROM warns WHERE subject_id = $1 ORDER BY issued_at DESC, id DESC",
		subjectID)
}

func (s *PostgresWarnStore) Recent(ctx context.Context, limit int) ([]models.Warn, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.query(ctx, "SELECT "+warnColumns+" FROM warns ORDER BY id DESC LIMIT $1", limit)
}

func (s *PostgresWarnStore) DeleteByID(ctx context.Context, id int64) (int, error) {
	return s.exec(ctx, "DELETE FROM warns WHERE id = $1", id)
}

func (s *PostgresWarnStore) DeleteBySubject(ctx context.Context, subjectID string) (int, error) {
	return s.exec(ctx, "DELETE FROM warns WHERE subject_id = $1", subjectID)
}

func (s *PostgresWarnStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return s.exec(ctx, "DELETE FROM warns WHERE expires_at <= $1", toMillis(now))
}

func (s *PostgresWarnStore) DeleteExpiredForSubject(ctx context.Context, subjectID string, now time.Time) (int, error) {
	return s.exec(ctx, "DELETE FROM warns WHERE subject_id = $1 AND expires_at <= $2", subjectID, toMillis(now))
}

func (s *PostgresWarnStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	err := s.pool.Ping(ctx)
	return time.Since(start), err
}

func (s *PostgresWarnStore) Stats(ctx context.Context, now time.Time) (models.WarnStats, error) {
	var st models.WarnStats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE expires_at > $1),
		       COUNT(DISTINCT subject_id)
		FROM warns`, toMillis(now)).Scan(&st.Total, &st.Active, &st.Subjects)
	if err != nil {
		return models.WarnStats{}, fmt.Errorf("postgres: stats: %w", err)
	}
	st.Expired = st.Total - st.Active
	return st, nil
}

func (s *PostgresWarnStore) Verify(ctx context.Context) error {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT to_regclass('public.warns') IS NOT NULL").Scan(&exists)
	if err != nil {
		return fmt.Errorf("postgres: verify schema: %w", err)
	}
	if !exists {
		return fmt.Errorf("postgres: table warns does not exist")
	}

	var indexes int
	err = s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM pg_indexes WHERE tablename = 'warns' AND indexname LIKE 'idx_warns_%'").Scan(&indexes)
	if err != nil {
		return fmt.Errorf("postgres: verify indexes: %w", err)
	}
	if indexes < 3 {
		return fmt.Errorf("postgres: expected 3 warn indexes, found %d", indexes)
	}

	var bad int64
	if err := s.pool.QueryRow(ctx, invariantViolations).Scan(&bad); err != nil {
		return fmt.Errorf("postgres: verify warns: %w", err)
	}
	return checkViolations(bad)
}

func (s *PostgresWarnStore) Reset(ctx context.Context) (int, error) {
	return s.exec(ctx, "DELETE FROM warns")
}

func (s *PostgresWarnStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresWarnStore) query(ctx context.Context, query string, args ...any) ([]models.Warn, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query warns: %w", err)
	}

	warns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Warn, error) {
		return scanWarn(row)
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: scan warns: %w", err)
	}
	return warns, nil
}

func (s *PostgresWarnStore) exec(ctx context.Context, query string, args ...any) (int, error) {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("postgres: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
