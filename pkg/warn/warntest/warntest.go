// Package warntest holds the behaviour every warn.Store backend must share.
package warntest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/models"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Factory returns an empty store. Cleanup should be registered on t.
type Factory func(t *testing.T) warn.Store

var base = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func issuer(s string) *string { return &s }

// NewWarn builds a warn issued at issuedAt that expires after ttl.
func NewWarn(subjectID string, issuedAt time.Time, ttl time.Duration) models.Warn {
	return models.Warn{
		SubjectID: subjectID,
		IssuerID:  issuer("M1"),
		Reason:    "spam",
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(ttl),
	}
}

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("InsertAssignsIncreasingIDs", func(t *testing.T) { testInsertIDs(t, newStore(t)) })
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, newStore(t)) })
	t.Run("ActiveBoundary", func(t *testing.T) { testActiveBoundary(t, newStore(t)) })
	t.Run("Ordering", func(t *testing.T) { testOrdering(t, newStore(t)) })
	t.Run("SubjectIsolation", func(t *testing.T) { testSubjectIsolation(t, newStore(t)) })
	t.Run("DeleteByID", func(t *testing.T) { testDeleteByID(t, newStore(t)) })
	t.Run("DeleteBySubject", func(t *testing.T) { testDeleteBySubject(t, newStore(t)) })
	t.Run("DeleteExpired", func(t *testing.T) { testDeleteExpired(t, newStore(t)) })
	t.Run("DeleteExpiredForSubject", func(t *testing.T) { testDeleteExpiredForSubject(t, newStore(t)) })
	t.Run("ConcurrentInsert", func(t *testing.T) { testConcurrentInsert(t, newStore(t)) })
	t.Run("EngineScenario", func(t *testing.T) { testEngineScenario(t, newStore(t)) })
}

func testInsertIDs(t *testing.T, s warn.Store) {
	ctx := context.Background()
	var last int64
	for i := 0; i < 5; i++ {
		id, err := s.Insert(ctx, NewWarn("U1", base, time.Hour))
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}
}

func testRoundTrip(t *testing.T, s warn.Store) {
	ctx := context.Background()
	issued := base.Add(123 * time.Millisecond)

	w := NewWarn("U1", issued, 48*time.Hour)
	w.Reason = "lenguaje ofensivo: ñandú 🚫"
	id, err := s.Insert(ctx, w)
	require.NoError(t, err)

	system := NewWarn("U1", issued.Add(time.Second), 48*time.Hour)
	system.IssuerID = nil
	_, err = s.Insert(ctx, system)
	require.NoError(t, err)

	got, err := s.ListActive(ctx, "U1", issued)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "U1", got[0].SubjectID)
	require.NotNil(t, got[0].IssuerID)
	assert.Equal(t, "M1", *got[0].IssuerID)
	assert.Equal(t, w.Reason, got[0].Reason)
	assert.True(t, got[0].IssuedAt.Equal(issued), "issuedAt %v != %v", got[0].IssuedAt, issued)
	assert.True(t, got[0].ExpiresAt.Equal(w.ExpiresAt), "expiresAt %v != %v", got[0].ExpiresAt, w.ExpiresAt)

	assert.Nil(t, got[1].IssuerID)
}

func testActiveBoundary(t *testing.T, s warn.Store) {
	ctx := context.Background()
	w := NewWarn("U1", base, time.Hour)
	_, err := s.Insert(ctx, w)
	require.NoError(t, err)

	n, err := s.CountActive(ctx, "U1", w.ExpiresAt.Add(-time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.CountActive(ctx, "U1", w.ExpiresAt)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	active, err := s.ListActive(ctx, "U1", w.ExpiresAt)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func testOrdering(t *testing.T, s warn.Store) {
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := s.Insert(ctx, NewWarn("U1", base.Add(time.Duration(i)*time.Minute), 24*time.Hour))
		require.NoError(t, err)
	}

	active, err := s.ListActive(ctx, "U1", base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, active, 4)
	for i := 1; i < len(active); i++ {
		assert.False(t, active[i].IssuedAt.Before(active[i-1].IssuedAt), "ListActive not ascending at %d", i)
	}

	history, err := s.ListHistory(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].IssuedAt.After(history[i-1].IssuedAt), "ListHistory not descending at %d", i)
	}
}

func testSubjectIsolation(t *testing.T, s warn.Store) {
	ctx := context.Background()
	_, err := s.Insert(ctx, NewWarn("U1", base, time.Hour))
	require.NoError(t, err)
	_, err = s.Insert(ctx, NewWarn("U2", base, time.Hour))
	require.NoError(t, err)

	n, err := s.CountActive(ctx, "U3", base)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	history, err := s.ListHistory(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "U1", history[0].SubjectID)
}

func testDeleteByID(t *testing.T, s warn.Store) {
	ctx := context.Background()
	id, err := s.Insert(ctx, NewWarn("U1", base, time.Hour))
	require.NoError(t, err)

	n, err := s.DeleteByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.DeleteByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = s.DeleteByID(ctx, 987654)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func testDeleteBySubject(t *testing.T, s warn.Store) {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := s.Insert(ctx, NewWarn("U1", base, time.Duration(i+1)*time.Hour))
		require.NoError(t, err)
	}
	_, err := s.Insert(ctx, NewWarn("U2", base, time.Hour))
	require.NoError(t, err)

	n, err := s.DeleteBySubject(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	history, err := s.ListHistory(ctx, "U1")
	require.NoError(t, err)
	assert.Empty(t, history)

	c, err := s.CountActive(ctx, "U2", base)
	require.NoError(t, err)
	assert.Equal(t, 1, c)
}

func testDeleteExpired(t *testing.T, s warn.Store) {
	ctx := context.Background()
	_, err := s.Insert(ctx, NewWarn("U1", base, time.Hour))
	require.NoError(t, err)
	_, err = s.Insert(ctx, NewWarn("U2", base, 2*time.Hour))
	require.NoError(t, err)
	_, err = s.Insert(ctx, NewWarn("U3", base, 3*time.Hour))
	require.NoError(t, err)

	// expires_at equal to now is expired
	n, err := s.DeleteExpired(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.DeleteExpired(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	history, err := s.ListHistory(ctx, "U3")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func testDeleteExpiredForSubject(t *testing.T, s warn.Store) {
	ctx := context.Background()
	_, err := s.Insert(ctx, NewWarn("U1", base, time.Hour))
	require.NoError(t, err)
	_, err = s.Insert(ctx, NewWarn("U1", base, 5*time.Hour))
	require.NoError(t, err)
	_, err = s.Insert(ctx, NewWarn("U2", base, time.Hour))
	require.NoError(t, err)

	n, err := s.DeleteExpiredForSubject(ctx, "U1", base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	history, err := s.ListHistory(ctx, "U2")
	require.NoError(t, err)
	assert.Len(t, history, 1, "other subjects must not be purged")
}

func testConcurrentInsert(t *testing.T, s warn.Store) {
	ctx := context.Background()
	const workers = 10

	var (
		mu  sync.Mutex
		ids []int64
	)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			id, err := s.Insert(ctx, NewWarn(fmt.Sprintf("U%d", i%3), base, time.Hour))
			if err != nil {
				return err
			}
			mu.Lock()
			ids = append(ids, id)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[int64]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
}

func testEngineScenario(t *testing.T, s warn.Store) {
	ctx := context.Background()
	engine := warn.NewEngine(s, warn.Options{})

	res, err := engine.RegisterWarn(ctx, "U1", issuer("M1"), "spam", base)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ActiveCount)
	assert.Equal(t, warn.NoPunishment, res.Action)

	res, err = engine.RegisterWarn(ctx, "U1", issuer("M1"), "spam", base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, res.ActiveCount)
	assert.Equal(t, warn.Timeout(10*time.Minute), res.Action)

	n, err := engine.CountActiveWarns(ctx, "U1", base.Add(30*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = engine.RegisterWarn(ctx, "", issuer("M1"), "x", base)
	require.ErrorIs(t, err, warn.ErrInvalidInput)

	cleared, err := engine.ClearSubject(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, 1, cleared)
}
