package discord

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Platform adapts a discordgo session to the calls the moderation wizard,
// the audit discovery and the log fan-out make. Lookups prefer the state cache.
type Platform struct {
	Session *discordgo.Session
}

// NewPlatform wraps s
func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{Session: s}
}

// User fetches a user by id
func (p *Platform) User(ctx context.Context, userID string) (*discordgo.User, error) {
	return p.Session.User(userID, discordgo.WithContext(ctx))
}

// Member fetches a guild member, from the cache when possible
func (p *Platform) Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if p.Session.StateEnabled && p.Session.State != nil {
		if m, err := p.Session.State.Member(guildID, userID); err == nil {
			return m, nil
		}
	}
	return p.Session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
}

// Guild fetches a guild with its roles, from the cache when possible
func (p *Platform) Guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if p.Session.StateEnabled && p.Session.State != nil {
		if g, err := p.Session.State.Guild(guildID); err == nil {
			return g, nil
		}
	}
	return p.Session.Guild(guildID, discordgo.WithContext(ctx))
}

// BotMember returns the bot's own member in guildID
func (p *Platform) BotMember(ctx context.Context, guildID string) (*discordgo.Member, error) {
	return p.Member(ctx, guildID, p.Session.State.User.ID)
}

// BotID returns the bot user id
func (p *Platform) BotID() string {
	if p.Session.State == nil || p.Session.State.User == nil {
		return ""
	}
	return p.Session.State.User.ID
}

// Ban fetches the ban entry of userID
func (p *Platform) Ban(ctx context.Context, guildID, userID string) (*discordgo.GuildBan, error) {
	return p.Session.GuildBan(guildID, userID, discordgo.WithContext(ctx))
}

// Kick removes a member from the guild
func (p *Platform) Kick(ctx context.Context, guildID, userID, reason string) error {
	return p.Session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

// Timeout sets or clears a member timeout
func (p *Platform) Timeout(ctx context.Context, guildID, userID string, until *time.Time, reason string) error {
	return p.Session.GuildMemberTimeout(guildID, userID, until, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

// CreateBan bans userID, purging deleteMessageSeconds of their recent messages
func (p *Platform) CreateBan(ctx context.Context, guildID, userID, reason string, deleteMessageSeconds int) error {
	data := map[string]interface{}{
		"delete_message_seconds": deleteMessageSeconds,
	}
	_, err := p.Session.RequestWithBucketID(
		http.MethodPut,
		discordgo.EndpointGuildBan(guildID, userID),
		data,
		discordgo.EndpointGuildBan(guildID, ""),
		discordgo.WithContext(ctx),
		discordgo.WithAuditLogReason(reason),
	)
	return err
}

// RemoveBan lifts a ban
func (p *Platform) RemoveBan(ctx context.Context, guildID, userID, reason string) error {
	return p.Session.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

// SendDM opens a DM channel with userID and sends msg
func (p *Platform) SendDM(ctx context.Context, userID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	ch, err := p.Session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return p.Session.ChannelMessageSendComplex(ch.ID, msg, discordgo.WithContext(ctx))
}

// Send posts msg to channelID
func (p *Platform) Send(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return p.Session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
}

// EditEmbeds replaces the embeds of a posted message
func (p *Platform) EditEmbeds(ctx context.Context, channelID, messageID string, embeds []*discordgo.MessageEmbed) error {
	_, err := p.Session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:      messageID,
		Channel: channelID,
		Embeds:  &embeds,
	}, discordgo.WithContext(ctx))
	return err
}

// Delete removes a posted message
func (p *Platform) Delete(ctx context.Context, channelID, messageID string) error {
	return p.Session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

// AuditLog reads recent guild audit log entries of one type
func (p *Platform) AuditLog(ctx context.Context, guildID string, actionType discordgo.AuditLogAction, limit int) (*discordgo.GuildAuditLog, error) {
	return p.Session.GuildAuditLog(guildID, "", "", int(actionType), limit, discordgo.WithContext(ctx))
}

// Respond answers an interaction
func (p *Platform) Respond(ctx context.Context, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return p.Session.InteractionRespond(i, resp, discordgo.WithContext(ctx))
}

// Edit replaces the embeds and components of the interaction's message
func (p *Platform) Edit(ctx context.Context, i *discordgo.Interaction, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	_, err := p.Session.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx))
	return err
}

// Followup sends an ephemeral follow-up message
func (p *Platform) Followup(ctx context.Context, i *discordgo.Interaction, content string) error {
	_, err := p.Session.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	return err
}
