package utils

import (
	"context"
	"testing"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/database"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn/warntest"
)

var now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func withBackend(t *testing.T, b database.Maintenance) {
	t.Helper()
	backend = b
	t.Cleanup(func() { backend = nil })
}

func TestPingMessage(t *testing.T) {
	tests := []struct {
		name    string
		gateway time.Duration
		store   time.Duration
		want    string
	}{
		{"store up", 42 * time.Millisecond, 3 * time.Millisecond, "🏓 Pong! PancyWarn | Gateway: 42ms | Advertencias: 3ms"},
		{"store down", 42 * time.Millisecond, -1, "🏓 Pong! PancyWarn | Gateway: 42ms | Advertencias: sin conexión"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pingMessage(tt.gateway, tt.store); got != tt.want {
				t.Errorf("pingMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStoreLatencyWithoutBackend(t *testing.T) {
	withBackend(t, nil)
	if got := storeLatency(context.Background()); got != -1 {
		t.Errorf("storeLatency() = %v, want -1", got)
	}
}

func TestWarnFields(t *testing.T) {
	store := database.NewMemoryWarnStore()
	withBackend(t, store)
	ctx := context.Background()

	for _, w := range []struct {
		subject string
		issued  time.Time
	}{
		{"U1", now.Add(-2 * time.Hour)},
		{"U1", now},
		{"U2", now},
	} {
		if _, err := store.Insert(ctx, warntest.NewWarn(w.subject, w.issued, time.Hour)); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	fields := warnFields(ctx, now)
	got := make(map[string]string, len(fields))
	for _, f := range fields {
		got[f.Name] = f.Value
	}

	want := map[string]string{
		"💾 Almacén":             "memory",
		"⚠️ Advertencias":       "Total: 3 | Activas: 2 | Expiradas: 1",
		"👤 Usuarios advertidos": "2",
		"🔨 Ban automático":      "Al llegar a 6 activas",
	}
	for name, value := range want {
		if got[name] != value {
			t.Errorf("warnFields()[%q] = %q, want %q", name, got[name], value)
		}
	}
}

func TestWarnFieldsWithoutBackend(t *testing.T) {
	withBackend(t, nil)
	fields := warnFields(context.Background(), now)
	if len(fields) != 1 || fields[0].Value != "🔴 | Sin configurar" {
		t.Errorf("warnFields() = %+v, want a single unconfigured field", fields)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 segundos"},
		{90 * time.Second, "1 minutos, 30 segundos"},
		{26*time.Hour + 5*time.Second, "1 días, 2 horas, 5 segundos"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
