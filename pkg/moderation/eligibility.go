package moderation

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// StaffPermissions marks a member as staff. Staff never receive warns.
const StaffPermissions = discordgo.PermissionAdministrator |
	discordgo.PermissionModerateMembers |
	discordgo.PermissionKickMembers |
	discordgo.PermissionBanMembers

// Candidate is what the eligibility check knows about a would-be subject.
type Candidate struct {
	UserID      string
	Bot         bool
	Owner       bool
	Permissions int64
	// Known is false when the user is no longer a guild member.
	Known bool
}

// IsStaff reports whether the candidate holds moderation authority.
func (c Candidate) IsStaff() bool {
	return c.Owner || c.Permissions&StaffPermissions != 0
}

// CanReceiveWarn excludes bots and staff. Users who left the guild stay eligible.
func CanReceiveWarn(c Candidate) bool {
	if c.UserID == "" || c.Bot {
		return false
	}
	if !c.Known {
		return true
	}
	return !c.IsStaff()
}

// ResolveCandidate looks the user up in channelID's guild, state cache first.
func ResolveCandidate(s *discordgo.Session, guildID, channelID string, user *discordgo.User) (Candidate, error) {
	c := Candidate{UserID: user.ID, Bot: user.Bot}
	if c.Bot {
		return c, nil
	}

	if _, err := memberOf(s, guildID, user.ID); err != nil {
		if isUnknownMember(err) {
			return c, nil
		}
		return c, err
	}
	c.Known = true

	if guild, err := s.State.Guild(guildID); err == nil && guild.OwnerID == user.ID {
		c.Owner = true
	}

	perms, err := s.State.UserChannelPermissions(user.ID, channelID)
	if err != nil {
		perms, err = s.UserChannelPermissions(user.ID, channelID)
		if err != nil {
			return c, err
		}
	}
	c.Permissions = perms
	return c, nil
}

func memberOf(s *discordgo.Session, guildID, userID string) (*discordgo.Member, error) {
	if m, err := s.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	return s.GuildMember(guildID, userID)
}

func isUnknownMember(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMember {
			return true
		}
		return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

// MaskID hides all but the last four characters of an id.
func MaskID(id string) string {
	if len(id) <= 4 {
		return strings.Repeat("*", len(id))
	}
	return "****" + id[len(id)-4:]
}
