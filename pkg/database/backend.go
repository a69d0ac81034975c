package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/PancyStudios/PancyWarnGo/pkg/models"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
)

// Backend kinds accepted by Open.
const (
	KindMongo    = "mongo"
	KindPostgres = "postgres"
	KindSQLite   = "sqlite"
	KindMemory   = "memory"
)

// Maintenance is the operator surface shared by every backend.
type Maintenance interface {
	// Name identifies the backend kind.
	Name() string
	Ping(ctx context.Context) (time.Duration, error)
	// Stats counts stored warns, splitting active and expired at now.
	Stats(ctx context.Context, now time.Time) (models.WarnStats, error)
	// Recent returns the last limit warns inserted, newest first.
	Recent(ctx context.Context, limit int) ([]models.Warn, error)
	// Verify checks the schema and that no stored warn breaks the record invariants.
	Verify(ctx context.Context) error
	// Reset deletes every warn. Ids are not reused afterwards.
	Reset(ctx context.Context) (int, error)
	Close() error
}

// Backend is a warn store with its maintenance operations.
type Backend interface {
	warn.Store
	Maintenance
}

// Options selects and configures a backend.
type Options struct {
	Kind        string
	MongoURL    string
	DBName      string
	PostgresURL string
	SQLitePath  string
}

// Open connects the backend named by opts.Kind and prepares its schema.
func Open(ctx context.Context, opts Options) (Backend, error) {
	kind := strings.ToLower(strings.TrimSpace(opts.Kind))
	if kind == "" {
		kind = KindSQLite
	}

	var (
		backend Backend
		err     error
	)
	switch kind {
	case KindMongo:
		backend, err = OpenMongo(ctx, opts.MongoURL, opts.DBName)
	case KindPostgres:
		backend, err = OpenPostgres(ctx, opts.PostgresURL)
	case KindSQLite:
		backend, err = OpenSQLite(ctx, opts.SQLitePath)
	case KindMemory:
		backend = NewMemoryWarnStore()
	default:
		return nil, fmt.Errorf("unknown warn store %q", opts.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s warn store: %w", kind, err)
	}

	logger.Success(fmt.Sprintf("Almacén de advertencias listo (%s)", backend.Name()), "DB")
	return backend, nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
