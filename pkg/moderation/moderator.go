// Package moderation adapts Discord guild actions to the warn engine and
// decides which members may receive warns.
package moderation

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// MaxTimeout is the longest timeout Discord accepts.
const MaxTimeout = 28 * 24 * time.Hour

// Session is the subset of *discordgo.Session used to punish members.
type Session interface {
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
}

var _ Session = (*discordgo.Session)(nil)

// GuildModerator applies punishments inside one guild.
type GuildModerator struct {
	Session Session
	GuildID string
	// DeleteMessageDays is how much message history a ban removes.
	DeleteMessageDays int

	now func() time.Time
}

func NewGuildModerator(s Session, guildID string) *GuildModerator {
	return &GuildModerator{Session: s, GuildID: guildID, DeleteMessageDays: 1, now: time.Now}
}

// Timeout restricts the member for d, capped at MaxTimeout.
func (m *GuildModerator) Timeout(ctx context.Context, subjectID string, d time.Duration, reason string) error {
	if d > MaxTimeout {
		d = MaxTimeout
	}
	until := m.clock().Add(d)
	return m.Session.GuildMemberTimeout(m.GuildID, subjectID, &until,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

// Untimeout lifts an active timeout.
func (m *GuildModerator) Untimeout(ctx context.Context, subjectID, reason string) error {
	return m.Session.GuildMemberTimeout(m.GuildID, subjectID, nil,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

func (m *GuildModerator) Kick(ctx context.Context, subjectID string, reason string) error {
	return m.Session.GuildMemberDeleteWithReason(m.GuildID, subjectID, reason, discordgo.WithContext(ctx))
}

func (m *GuildModerator) Ban(ctx context.Context, subjectID string, reason string) error {
	return m.Session.GuildBanCreateWithReason(m.GuildID, subjectID, reason, m.DeleteMessageDays, discordgo.WithContext(ctx))
}

func (m *GuildModerator) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}
