package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/database"
	"github.com/PancyStudios/PancyWarnGo/pkg/models"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	store *database.MemoryWarnStore
	out   *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{store: database.NewMemoryWarnStore(), out: &bytes.Buffer{}}
}

func (h *harness) run(args ...string) error {
	open := func(context.Context, *cli.Context) (database.Backend, error) { return h.store, nil }
	app := newApp(open, func() time.Time { return testNow })
	app.Writer = h.out
	app.ErrWriter = &bytes.Buffer{}
	h.out.Reset()
	return app.Run(append([]string{"warnctl"}, args...))
}

func (h *harness) seed(t *testing.T, subject string, issuedAt time.Time, n int) {
	t.Helper()
	e := warn.NewEngine(h.store, warn.Options{})
	for i := 0; i < n; i++ {
		_, err := e.RegisterWarn(context.Background(), subject, nil, "spam", issuedAt)
		require.NoError(t, err)
	}
}

func TestCount(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "U1", testNow, 2)

	require.NoError(t, h.run("count", "U1"))
	assert.Equal(t, "U1: 2 active warns (next: timeout(1h0m0s))\n", h.out.String())

	require.NoError(t, h.run("--json", "count", "U1"))
	var got map[string]any
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &got))
	assert.EqualValues(t, 2, got["active"])
	assert.Equal(t, "timeout(1h0m0s)", got["nextAction"])
}

func TestCountRequiresSubject(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.run("count"))
}

func TestActiveAndHistory(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "U1", testNow.Add(-time.Hour), 1)
	// Inserted directly: RegisterWarn would purge it.
	_, err := h.store.Insert(context.Background(), models.Warn{
		SubjectID: "U1",
		Reason:    "old",
		IssuedAt:  testNow.Add(-30 * 24 * time.Hour),
		ExpiresAt: testNow.Add(-29 * 24 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, h.run("history", "U1"))
	assert.Contains(t, h.out.String(), "expired")
	assert.Contains(t, h.out.String(), "issuer=system")

	// Listing active warns purges the expired one.
	require.NoError(t, h.run("--json", "active", "U1"))
	var active []models.Warn
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &active))
	assert.Len(t, active, 1)

	require.NoError(t, h.run("history", "U1"))
	assert.NotContains(t, h.out.String(), "expired")

	require.NoError(t, h.run("active", "nobody"))
	assert.Equal(t, "no warns\n", h.out.String())
}

func TestRemoveAndClear(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "U1", testNow, 3)

	require.NoError(t, h.run("remove", "1"))
	assert.Equal(t, "removed warn #1\n", h.out.String())
	assert.Error(t, h.run("remove", "1"))
	assert.Error(t, h.run("remove", "abc"))

	require.NoError(t, h.run("clear", "U1"))
	assert.Equal(t, "removed 2 warns of U1\n", h.out.String())
}

func TestPurgeStatsAndReset(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "U1", testNow.Add(-48*time.Hour), 1)
	h.seed(t, "U2", testNow, 1)

	require.NoError(t, h.run("stats"))
	assert.Equal(t, "memory: total=2 active=1 expired=1 subjects=2\n", h.out.String())

	require.NoError(t, h.run("purge"))
	assert.Equal(t, "purged 1 expired warns\n", h.out.String())

	require.NoError(t, h.run("verify"))
	assert.Equal(t, "memory OK\n", h.out.String())

	assert.Error(t, h.run("reset"))
	require.NoError(t, h.run("reset", "--yes"))
	assert.Equal(t, "deleted 1 warns from memory\n", h.out.String())
}

func TestPolicy(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("policy"))
	assert.Equal(t, warn.SystemInfo(), h.out.String())
}
