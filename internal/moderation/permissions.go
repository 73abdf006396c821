package moderation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// allPermissions sets every permission bit, including the newer ones that
// discordgo.PermissionAll does not cover.
const allPermissions int64 = math.MaxInt64

// PermissionSet maps every action to whether it may be confirmed right now
type PermissionSet map[Action]bool

// Allows reports whether a is permitted
func (p PermissionSet) Allows(a Action) bool {
	return p[a]
}

// Permitted returns the allowed actions in menu order
func (p PermissionSet) Permitted() []Action {
	out := make([]Action, 0, len(Actions))
	for _, a := range Actions {
		if p[a] {
			out = append(out, a)
		}
	}
	return out
}

func newPermissionSet() PermissionSet {
	p := make(PermissionSet, len(Actions))
	for _, a := range Actions {
		p[a] = false
	}
	p[ActionNote] = true
	return p
}

// GetPermissions computes the actions staff may take on target. It reads the
// current ban and role state, so callers evaluate it again on every render.
func GetPermissions(ctx context.Context, p Platform, guild *discordgo.Guild, staff *discordgo.Member, target Target) PermissionSet {
	perms := newPermissionSet()
	if guild == nil || staff == nil {
		return perms
	}

	bot, err := p.BotMember(ctx, guild.ID)
	if err != nil {
		logger.Warn(fmt.Sprintf("No se pudo obtener el miembro del bot en %s: %v", guild.ID, err), "ModMenu")
	}

	staffPerms := memberPermissions(guild, staff)
	botPerms := memberPermissions(guild, bot)

	banned := false
	ban, err := p.Ban(ctx, guild.ID, target.ID())
	switch {
	case err == nil:
		banned = ban != nil
	case isUnknownBan(err):
	default:
		logger.Warn(fmt.Sprintf("Fallo al consultar el baneo de %s: %v", target.ID(), err), "ModMenu")
	}

	staffCanBan := has(staffPerms, discordgo.PermissionBanMembers)
	botCanBan := has(botPerms, discordgo.PermissionBanMembers)
	perms[ActionUnban] = banned && botCanBan && staffCanBan

	if target.Member == nil {
		perms[ActionBan] = !banned && staffCanBan && botCanBan
		return perms
	}

	perms[ActionWarn] = true

	if !outranks(guild, staff, target.Member) {
		return perms
	}

	member := target.Member
	perms[ActionKick] = kickable(guild, bot, botPerms, member) && has(staffPerms, discordgo.PermissionKickMembers)

	canTimeout := moderatable(guild, bot, botPerms, member) && has(staffPerms, discordgo.PermissionModerateMembers)
	perms[ActionTimeout] = canTimeout
	perms[ActionRestrain] = canTimeout
	perms[ActionUntimeout] = canTimeout && timedOut(member)

	perms[ActionBan] = bannable(guild, bot, botPerms, member) && staffCanBan

	return perms
}

func has(perms, flag int64) bool {
	return perms&flag == flag
}

func timedOut(m *discordgo.Member) bool {
	return m.CommunicationDisabledUntil != nil && m.CommunicationDisabledUntil.After(time.Now())
}

func memberID(m *discordgo.Member) string {
	if m == nil || m.User == nil {
		return ""
	}
	return m.User.ID
}

// memberPermissions resolves guild-level permissions from the member's roles
func memberPermissions(guild *discordgo.Guild, m *discordgo.Member) int64 {
	if m == nil {
		return 0
	}
	if memberID(m) != "" && memberID(m) == guild.OwnerID {
		return allPermissions
	}

	roles := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, r := range guild.Roles {
		roles[r.ID] = r
	}

	// Interaction members carry their computed permissions.
	perms := m.Permissions
	if everyone, ok := roles[guild.ID]; ok {
		perms |= everyone.Permissions
	}
	for _, id := range m.Roles {
		if r, ok := roles[id]; ok {
			perms |= r.Permissions
		}
	}

	if perms&discordgo.PermissionAdministrator != 0 {
		return allPermissions
	}
	return perms
}

// highestPosition is the position of the member's top role; @everyone is 0
func highestPosition(guild *discordgo.Guild, m *discordgo.Member) int {
	positions := make(map[string]int, len(guild.Roles))
	for _, r := range guild.Roles {
		positions[r.ID] = r.Position
	}

	top := 0
	for _, id := range m.Roles {
		if pos, ok := positions[id]; ok && pos > top {
			top = pos
		}
	}
	return top
}

// outranks reports whether staff may act on target in the role hierarchy
func outranks(guild *discordgo.Guild, staff, target *discordgo.Member) bool {
	if memberID(target) == guild.OwnerID {
		return false
	}
	if memberID(staff) == guild.OwnerID {
		return true
	}
	return highestPosition(guild, staff) > highestPosition(guild, target)
}

// manageable reports whether the bot sits above target in the hierarchy
func manageable(guild *discordgo.Guild, bot, target *discordgo.Member) bool {
	if bot == nil {
		return false
	}
	if memberID(target) == guild.OwnerID || memberID(target) == memberID(bot) {
		return false
	}
	if memberID(bot) == guild.OwnerID {
		return true
	}
	return highestPosition(guild, bot) > highestPosition(guild, target)
}

func kickable(guild *discordgo.Guild, bot *discordgo.Member, botPerms int64, target *discordgo.Member) bool {
	return manageable(guild, bot, target) && has(botPerms, discordgo.PermissionKickMembers)
}

func bannable(guild *discordgo.Guild, bot *discordgo.Member, botPerms int64, target *discordgo.Member) bool {
	return manageable(guild, bot, target) && has(botPerms, discordgo.PermissionBanMembers)
}

// moderatable mirrors the platform rule: administrators cannot be timed out
func moderatable(guild *discordgo.Guild, bot *discordgo.Member, botPerms int64, target *discordgo.Member) bool {
	if has(memberPermissions(guild, target), discordgo.PermissionAdministrator) {
		return false
	}
	return manageable(guild, bot, target) && has(botPerms, discordgo.PermissionModerateMembers)
}
