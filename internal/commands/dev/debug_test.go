package dev

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/database"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
)

var now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*database.MemoryWarnStore, *bool) {
	t.Helper()
	store := database.NewMemoryWarnStore()
	flushed := false
	deps = Deps{
		Backend:    store,
		Engine:     warn.NewEngine(store, warn.Options{}),
		AfterReset: func() { flushed = true },
	}
	t.Cleanup(func() { deps = Deps{} })
	return store, &flushed
}

func TestStatusReport(t *testing.T) {
	setup(t)
	ctx := context.Background()

	if _, err := deps.Engine.RegisterWarn(ctx, "123456789", nil, "spam", now.Add(-72*time.Hour)); err != nil {
		t.Fatalf("RegisterWarn() error = %v", err)
	}
	if _, err := deps.Engine.RegisterWarn(ctx, "U-caller", nil, "flood", now); err != nil {
		t.Fatalf("RegisterWarn() error = %v", err)
	}

	out := statusReport(ctx, "U-caller", now)
	for _, want := range []string{
		"🟢 memory en linea",
		"Total: 2 | Activas: 1 | Expiradas: 1 | Usuarios: 2",
		"Usuario=****6789",
		"❌ EXPIRADA",
		"✅ ACTIVA",
		"**Tus advertencias activas:** 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("statusReport() missing %q in\n%s", want, out)
		}
	}
}

func TestStatusReportEmpty(t *testing.T) {
	setup(t)
	out := statusReport(context.Background(), "U1", now)
	if !strings.Contains(out, "No hay advertencias guardadas") {
		t.Errorf("statusReport() on an empty store =\n%s", out)
	}
}

func TestVerifyReport(t *testing.T) {
	setup(t)
	if out := verifyReport(context.Background()); !strings.HasPrefix(out, "✅") {
		t.Errorf("verifyReport() = %q, want success", out)
	}
}

func TestResetReport(t *testing.T) {
	store, flushed := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := deps.Engine.RegisterWarn(ctx, "U1", nil, "spam", now); err != nil {
			t.Fatalf("RegisterWarn() error = %v", err)
		}
	}

	out := resetReport(ctx, "admin")
	if !strings.Contains(out, "Se eliminaron 3 advertencias") {
		t.Errorf("resetReport() = %q", out)
	}
	if !*flushed {
		t.Error("AfterReset was not called")
	}
	if stats, _ := store.Stats(ctx, now); stats.Total != 0 {
		t.Errorf("Total after reset = %d, want 0", stats.Total)
	}
}
