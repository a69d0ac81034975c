package warn

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/models"
)

// Store is the durable table of warns. Implementations hold no policy and
// must be safe for concurrent use; every read is filtered by the caller's now.
type Store interface {
	// Insert appends w and returns the store-assigned id. w.ID is ignored.
	Insert(ctx context.Context, w models.Warn) (int64, error)
	// CountActive counts the subject's warns with ExpiresAt after now.
	CountActive(ctx context.Context, subjectID string, now time.Time) (int, error)
	// ListActive returns the subject's active warns, oldest first.
	ListActive(ctx context.Context, subjectID string, now time.Time) ([]models.Warn, error)
	// ListHistory returns every stored warn of the subject, newest first.
	ListHistory(ctx context.Context, subjectID string) ([]models.Warn, error)
	// DeleteByID removes one warn and returns 0 or 1.
	DeleteByID(ctx context.Context, id int64) (int, error)
	// DeleteBySubject removes all warns of the subject.
	DeleteBySubject(ctx context.Context, subjectID string) (int, error)
	// DeleteExpired removes every warn with ExpiresAt at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	// DeleteExpiredForSubject is DeleteExpired scoped to one subject.
	DeleteExpiredForSubject(ctx context.Context, subjectID string, now time.Time) (int, error)
}

// Locker serialises work per key. The returned unlock func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
