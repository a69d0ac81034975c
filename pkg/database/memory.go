package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/models"
)

// MemoryWarnStore is a process-local backend. Its contents are lost on exit.
type MemoryWarnStore struct {
	mu     sync.RWMutex
	nextID int64
	warns  map[int64]models.Warn
}

func NewMemoryWarnStore() *MemoryWarnStore {
	return &MemoryWarnStore{warns: make(map[int64]models.Warn)}
}

func (s *MemoryWarnStore) Name() string { return KindMemory }

func (s *MemoryWarnStore) Insert(ctx context.Context, w models.Warn) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	w.ID = s.nextID
	w.IssuedAt = w.IssuedAt.Truncate(time.Millisecond)
	w.ExpiresAt = w.ExpiresAt.Truncate(time.Millisecond)
	if w.IssuerID != nil {
		issuer := *w.IssuerID
		w.IssuerID = &issuer
	}
	s.warns[w.ID] = w
	return w.ID, nil
}

func (s *MemoryWarnStore) CountActive(ctx context.Context, subjectID string, now time.Time) (int, error) {
	warns, err := s.ListActive(ctx, subjectID, now)
	return len(warns), err
}

func (s *MemoryWarnStore) ListActive(ctx context.Context, subjectID string, now time.Time) ([]models.Warn, error) {
	warns, err := s.filter(ctx, func(w models.Warn) bool {
		return w.SubjectID == subjectID && w.IsActive(now)
	})
	sort.Slice(warns, func(i, j int) bool { return before(warns[i], warns[j]) })
	return warns, err
}

func (s *MemoryWarnStore) ListHistory(ctx context.Context, subjectID string) ([]models.Warn, error) {
	warns, err := s.filter(ctx, func(w models.Warn) bool { return w.SubjectID == subjectID })
	sort.Slice(warns, func(i, j int) bool { return before(warns[j], warns[i]) })
	return warns, err
}

func (s *MemoryWarnStore) Recent(ctx context.Context, limit int) ([]models.Warn, error) {
	if limit <= 0 {
		limit = 10
	}
	warns, err := s.filter(ctx, func(models.Warn) bool { return true })
	sort.Slice(warns, func(i, j int) bool { return warns[i].ID > warns[j].ID })
	if len(warns) > limit {
		warns = warns[:limit]
	}
	return warns, err
}

func (s *MemoryWarnStore) DeleteByID(ctx context.Context, id int64) (int, error) {
	return s.deleteWhere(ctx, func(w models.Warn) bool { return w.ID == id })
}

func (s *MemoryWarnStore) DeleteBySubject(ctx context.Context, subjectID string) (int, error) {
	return s.deleteWhere(ctx, func(w models.Warn) bool { return w.SubjectID == subjectID })
}

func (s *MemoryWarnStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return s.deleteWhere(ctx, func(w models.Warn) bool { return !w.IsActive(now) })
}

func (s *MemoryWarnStore) DeleteExpiredForSubject(ctx context.Context, subjectID string, now time.Time) (int, error) {
	return s.deleteWhere(ctx, func(w models.Warn) bool {
		return w.SubjectID == subjectID && !w.IsActive(now)
	})
}

func (s *MemoryWarnStore) Ping(ctx context.Context) (time.Duration, error) {
	return 0, ctx.Err()
}

func (s *MemoryWarnStore) Stats(ctx context.Context, now time.Time) (models.WarnStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := models.WarnStats{Total: len(s.warns)}
	subjects := make(map[string]struct{})
	for _, w := range s.warns {
		if w.IsActive(now) {
			st.Active++
		}
		subjects[w.SubjectID] = struct{}{}
	}
	st.Expired = st.Total - st.Active
	st.Subjects = len(subjects)
	return st, nil
}

func (s *MemoryWarnStore) Verify(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bad int64
	for _, w := range s.warns {
		if !w.ExpiresAt.After(w.IssuedAt) || w.SubjectID == "" || w.Reason == "" {
			bad++
		}
	}
	return checkViolations(bad)
}

func (s *MemoryWarnStore) Reset(ctx context.Context) (int, error) {
	return s.deleteWhere(ctx, func(models.Warn) bool { return true })
}

func (s *MemoryWarnStore) Close() error { return nil }

func (s *MemoryWarnStore) filter(ctx context.Context, match func(models.Warn) bool) ([]models.Warn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Warn
	for _, w := range s.warns {
		if match(w) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *MemoryWarnStore) deleteWhere(ctx context.Context, match func(models.Warn) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, w := range s.warns {
		if match(w) {
			delete(s.warns, id)
			n++
		}
	}
	return n, nil
}

// before orders by issue time, then id.
func before(a, b models.Warn) bool {
	if !a.IssuedAt.Equal(b.IssuedAt) {
		return a.IssuedAt.Before(b.IssuedAt)
	}
	return a.ID < b.ID
}
