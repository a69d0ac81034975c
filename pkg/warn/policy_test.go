package warn

import (
	"strings"
	"testing"
	"time"
)

func TestExpiryOffset(t *testing.T) {
	tests := []struct {
		count int
		want  time.Duration
	}{
		{0, 24 * time.Hour},
		{1, 24 * time.Hour},
		{2, 48 * time.Hour},
		{3, 7 * 24 * time.Hour},
		{4, 14 * 24 * time.Hour},
		{5, 30 * 24 * time.Hour},
		{6, 365 * 24 * time.Hour},
		{7, 365 * 24 * time.Hour},
		{100, 365 * 24 * time.Hour},
	}

	for _, tt := range tests {
		if got := ExpiryOffset(tt.count); got != tt.want {
			t.Errorf("ExpiryOffset(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestExpirationFor(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	want := time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)
	if got := ExpirationFor(3, issued); !got.Equal(want) {
		t.Errorf("ExpirationFor(3) = %v, want %v", got, want)
	}
}

func TestPunishmentFor(t *testing.T) {
	tests := []struct {
		count int
		want  PunishmentAction
	}{
		{0, NoPunishment},
		{1, NoPunishment},
		{2, Timeout(10 * time.Minute)},
		{3, Timeout(time.Hour)},
		{4, Timeout(24 * time.Hour)},
		{5, TimeoutFinalWarning(72 * time.Hour)},
		{6, BanAction},
		{9, BanAction},
	}

	for _, tt := range tests {
		if got := PunishmentFor(tt.count); got != tt.want {
			t.Errorf("PunishmentFor(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestPunishmentActionString(t *testing.T) {
	tests := []struct {
		action PunishmentAction
		want   string
	}{
		{NoPunishment, "none"},
		{Timeout(10 * time.Minute), "timeout(10m0s)"},
		{TimeoutFinalWarning(72 * time.Hour), "timeout_final_warning(72h0m0s)"},
		{BanAction, "ban"},
	}

	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{10 * time.Minute, "10 minutos"},
		{time.Hour, "1 hora"},
		{24 * time.Hour, "24 horas"},
		{48 * time.Hour, "48 horas"},
		{72 * time.Hour, "3 días"},
		{7 * 24 * time.Hour, "7 días"},
		{365 * 24 * time.Hour, "365 días"},
		{90 * time.Second, "1m30s"},
	}

	for _, tt := range tests {
		if got := HumanDuration(tt.d); got != tt.want {
			t.Errorf("HumanDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestPunishmentReason(t *testing.T) {
	if got := PunishmentReason(2, PunishmentFor(2)); got != "Sanción automática: advertencia nº 2" {
		t.Errorf("PunishmentReason(2) = %q", got)
	}
	if got := PunishmentReason(5, PunishmentFor(5)); !strings.Contains(got, "ÚLTIMO AVISO") {
		t.Errorf("PunishmentReason(5) = %q, want final warning text", got)
	}
	if got := PunishmentReason(7, PunishmentFor(7)); got != "Baneo automático: 7 advertencias acumuladas" {
		t.Errorf("PunishmentReason(7) = %q", got)
	}
}

func TestSystemInfoCoversLadder(t *testing.T) {
	info := SystemInfo()
	for _, want := range []string{"24 horas", "48 horas", "7 días", "14 días", "30 días", "365 días", "BAN PERMANENTE", "ÚLTIMO AVISO"} {
		if !strings.Contains(info, want) {
			t.Errorf("SystemInfo() missing %q", want)
		}
	}
}
