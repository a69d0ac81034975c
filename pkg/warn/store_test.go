package warn

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/models"
)

var errStoreDown = errors.New("store down")

// memStore is a minimal Store used by the engine tests. Setting fail makes
// the named operation return errStoreDown.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	warns  map[int64]models.Warn
	fail   map[string]bool
	calls  map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		warns: make(map[int64]models.Warn),
		fail:  make(map[string]bool),
		calls: make(map[string]int),
	}
}

func (s *memStore) enter(op string) error {
	s.calls[op]++
	if s.fail[op] {
		return errStoreDown
	}
	return nil
}

func (s *memStore) setFail(op string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = fail
}

func (s *memStore) callCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *memStore) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *memStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.warns)
}

func (s *memStore) Insert(ctx context.Context, w models.Warn) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("insert"); err != nil {
		return 0, err
	}
	s.nextID++
	w.ID = s.nextID
	s.warns[w.ID] = w
	return w.ID, nil
}

func (s *memStore) CountActive(ctx context.Context, subjectID string, now time.Time) (int, error) {
	warns, err := s.ListActive(ctx, subjectID, now)
	return len(warns), err
}

func (s *memStore) ListActive(ctx context.Context, subjectID string, now time.Time) ([]models.Warn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("list_active"); err != nil {
		return nil, err
	}
	var out []models.Warn
	for _, w := range s.warns {
		if w.SubjectID == subjectID && w.IsActive(now) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListHistory(ctx context.Context, subjectID string) ([]models.Warn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("list_history"); err != nil {
		return nil, err
	}
	var out []models.Warn
	for _, w := range s.warns {
		if w.SubjectID == subjectID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) DeleteByID(ctx context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("delete_by_id"); err != nil {
		return 0, err
	}
	if _, ok := s.warns[id]; !ok {
		return 0, nil
	}
	delete(s.warns, id)
	return 1, nil
}

func (s *memStore) DeleteBySubject(ctx context.Context, subjectID string) (int, error) {
	return s.deleteWhere("delete_by_subject", func(w models.Warn) bool { return w.SubjectID == subjectID })
}

func (s *memStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return s.deleteWhere("delete_expired", func(w models.Warn) bool { return !w.IsActive(now) })
}

func (s *memStore) DeleteExpiredForSubject(ctx context.Context, subjectID string, now time.Time) (int, error) {
	return s.deleteWhere("delete_expired_subject", func(w models.Warn) bool {
		return w.SubjectID == subjectID && !w.IsActive(now)
	})
}

func (s *memStore) deleteWhere(op string, match func(models.Warn) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(op); err != nil {
		return 0, err
	}
	n := 0
	for id, w := range s.warns {
		if match(w) {
			delete(s.warns, id)
			n++
		}
	}
	return n, nil
}
