package warn

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MaxReasonLength is the longest reason, in runes, accepted by RegisterWarn.
	MaxReasonLength = 500
	// BanThreshold is the active count at which a subject is banned.
	BanThreshold = 6

	day = 24 * time.Hour
)

// expiryLadder is indexed by active count, including the warn being issued.
var expiryLadder = [...]time.Duration{
	1: 24 * time.Hour,
	2: 48 * time.Hour,
	3: 7 * day,
	4: 14 * day,
	5: 30 * day,
	6: 365 * day,
}

// ExpiryOffset returns how long a warn issued as the count-th active warn lasts.
func ExpiryOffset(count int) time.Duration {
	switch {
	case count < 1:
		return expiryLadder[1]
	case count >= len(expiryLadder):
		return expiryLadder[len(expiryLadder)-1]
	default:
		return expiryLadder[count]
	}
}

// ExpirationFor returns the instant a warn issued at issuedAt stops counting.
func ExpirationFor(count int, issuedAt time.Time) time.Time {
	return issuedAt.Add(ExpiryOffset(count))
}

// PunishmentKind enumerates the closed set of automated punishments.
type PunishmentKind int

const (
	PunishmentNone PunishmentKind = iota
	PunishmentTimeout
	PunishmentTimeoutFinalWarning
	PunishmentBan
)

func (k PunishmentKind) String() string {
	switch k {
	case PunishmentNone:
		return "none"
	case PunishmentTimeout:
		return "timeout"
	case PunishmentTimeoutFinalWarning:
		return "timeout_final_warning"
	case PunishmentBan:
		return "ban"
	default:
		return "unknown"
	}
}

// PunishmentAction is what the ladder prescribes for a given active count.
// Duration is only meaningful for the timeout kinds.
type PunishmentAction struct {
	Kind     PunishmentKind `json:"kind"`
	Duration time.Duration  `json:"duration,omitempty"`
}

var (
	NoPunishment = PunishmentAction{Kind: PunishmentNone}
	BanAction    = PunishmentAction{Kind: PunishmentBan}
)

// Timeout builds a timeout action.
func Timeout(d time.Duration) PunishmentAction {
	return PunishmentAction{Kind: PunishmentTimeout, Duration: d}
}

// TimeoutFinalWarning builds the last timeout before a ban.
func TimeoutFinalWarning(d time.Duration) PunishmentAction {
	return PunishmentAction{Kind: PunishmentTimeoutFinalWarning, Duration: d}
}

// IsTimeout reports whether the action restricts the subject for a duration.
func (a PunishmentAction) IsTimeout() bool {
	return a.Kind == PunishmentTimeout || a.Kind == PunishmentTimeoutFinalWarning
}

func (a PunishmentAction) String() string {
	if a.IsTimeout() {
		return fmt.Sprintf("%s(%s)", a.Kind, a.Duration)
	}
	return a.Kind.String()
}

// PunishmentFor classifies an active count. It never performs the action.
func PunishmentFor(count int) PunishmentAction {
	switch {
	case count <= 1:
		return NoPunishment
	case count == 2:
		return Timeout(10 * time.Minute)
	case count == 3:
		return Timeout(time.Hour)
	case count == 4:
		return Timeout(24 * time.Hour)
	case count == 5:
		return TimeoutFinalWarning(3 * day)
	default:
		return BanAction
	}
}

// Description is the user-facing summary of the action.
func (a PunishmentAction) Description() string {
	switch a.Kind {
	case PunishmentNone:
		return "⚠️ Aviso - Sin sanción"
	case PunishmentTimeout:
		return "🕐 Aislamiento de " + HumanDuration(a.Duration)
	case PunishmentTimeoutFinalWarning:
		return "⚠️ Aislamiento de " + HumanDuration(a.Duration) + " - ÚLTIMO AVISO"
	case PunishmentBan:
		return "🔨 BAN PERMANENTE"
	default:
		return "🔴 Sanción desconocida"
	}
}

// PunishmentReason is the audit-log reason attached to the platform action.
func PunishmentReason(count int, a PunishmentAction) string {
	switch a.Kind {
	case PunishmentBan:
		return fmt.Sprintf("Baneo automático: %d advertencias acumuladas", count)
	case PunishmentTimeoutFinalWarning:
		return fmt.Sprintf("Sanción automática: advertencia nº %d - ÚLTIMO AVISO ANTES DEL BAN", count)
	default:
		return fmt.Sprintf("Sanción automática: advertencia nº %d", count)
	}
}

// HumanDuration renders ladder durations the way moderators read them.
func HumanDuration(d time.Duration) string {
	switch {
	case d >= 3*day && d%day == 0:
		return fmt.Sprintf("%d días", int(d/day))
	case d >= time.Hour && d%time.Hour == 0:
		n := int(d / time.Hour)
		if n == 1 {
			return "1 hora"
		}
		return fmt.Sprintf("%d horas", n)
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%d minutos", int(d/time.Minute))
	default:
		return d.String()
	}
}

// SystemInfo describes both ladders, generated from the policy functions.
func SystemInfo() string {
	var b strings.Builder
	b.WriteString("📋 **Sistema de advertencias**\n\n**Expiración:**\n")
	for n := 1; n <= BanThreshold; n++ {
		label := fmt.Sprintf("%dª", n)
		if n == BanThreshold {
			label += "+"
		}
		fmt.Fprintf(&b, "• %s advertencia → %s\n", label, HumanDuration(ExpiryOffset(n)))
	}
	b.WriteString("\n**Sanciones:**\n")
	for n := 1; n <= BanThreshold; n++ {
		fmt.Fprintf(&b, "• %d → %s\n", n, PunishmentFor(n).Description())
	}
	return b.String()
}
