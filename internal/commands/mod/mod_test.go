package mod

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/models"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
)

var now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func sampleWarns(n int) []models.Warn {
	issuer := "M1"
	warns := make([]models.Warn, n)
	for i := range warns {
		warns[i] = models.Warn{
			ID:        int64(i + 1),
			SubjectID: "U1",
			Reason:    fmt.Sprintf("razón %d", i+1),
			IssuedAt:  now,
			ExpiresAt: now.Add(time.Hour),
		}
		if i%2 == 0 {
			warns[i].IssuerID = &issuer
		}
	}
	return warns
}

func TestWarnChoices(t *testing.T) {
	warns := sampleWarns(30)

	if got := len(warnChoices(warns, "")); got != 25 {
		t.Errorf("warnChoices() returned %d choices, want 25", got)
	}

	choices := warnChoices(warns, " 1")
	// 1, 10..19
	if len(choices) != 11 {
		t.Errorf("warnChoices(\"1\") returned %d choices, want 11", len(choices))
	}
	if choices[0].Value != "1" {
		t.Errorf("first choice value = %v, want 1", choices[0].Value)
	}

	long := []models.Warn{{ID: 7, Reason: strings.Repeat("x", 300)}}
	if name := warnChoices(long, "")[0].Name; len([]rune(name)) != 100 {
		t.Errorf("choice name length = %d, want 100", len([]rune(name)))
	}
}

func TestFindWarn(t *testing.T) {
	warns := sampleWarns(3)
	if w, ok := findWarn(warns, 2); !ok || w.Reason != "razón 2" {
		t.Errorf("findWarn(2) = %v, %v", w, ok)
	}
	if _, ok := findWarn(warns, 9); ok {
		t.Error("findWarn(9) found a warn, want none")
	}
}

func TestFormatWarnList(t *testing.T) {
	warns := sampleWarns(2)
	warns[1].ExpiresAt = now.Add(-time.Minute)

	out := formatWarnList(warns, now)
	for _, want := range []string{"ID: `1`", "Por: <@M1>", "Por: Sistema", "🟢", "⚫", "Expiró"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatWarnList() missing %q in\n%s", want, out)
		}
	}
}

func TestLadderDescription(t *testing.T) {
	out := ladderDescription()
	if lines := strings.Count(out, "→"); lines != warn.BanThreshold {
		t.Errorf("ladder lines = %d, want %d", lines, warn.BanThreshold)
	}
	if !strings.Contains(out, fmt.Sprintf("**%d+**", warn.BanThreshold)) {
		t.Errorf("ladder does not mark the ban threshold as open ended:\n%s", out)
	}
}

func TestStoreErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: subject id is empty", warn.ErrInvalidInput), "❌ Datos inválidos: subject id is empty"},
		{fmt.Errorf("%w: insert: timeout", warn.ErrPersistence), "❌ No se pudo acceder a la base de datos. Intenta de nuevo más tarde."},
		{fmt.Errorf("boom"), "❌ Ocurrió un error inesperado."},
	}
	for _, tt := range tests {
		if got := storeErrorMessage(tt.err); got != tt.want {
			t.Errorf("storeErrorMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hola", 10); got != "hola" {
		t.Errorf("truncate() = %q, want unchanged", got)
	}
	if got := truncate("ñañañañaña", 5); got != "ña..." {
		t.Errorf("truncate() = %q, want %q", got, "ña...")
	}
}
