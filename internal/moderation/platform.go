package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Platform is the Discord surface the wizard needs. The production
// implementation wraps a discordgo session.
type Platform interface {
	User(ctx context.Context, userID string) (*discordgo.User, error)
	Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
	Guild(ctx context.Context, guildID string) (*discordgo.Guild, error)
	BotMember(ctx context.Context, guildID string) (*discordgo.Member, error)
	Ban(ctx context.Context, guildID, userID string) (*discordgo.GuildBan, error)

	Kick(ctx context.Context, guildID, userID, reason string) error
	// Timeout sets or, with a nil until, clears a member's timeout.
	Timeout(ctx context.Context, guildID, userID string, until *time.Time, reason string) error
	CreateBan(ctx context.Context, guildID, userID, reason string, deleteMessageSeconds int) error
	RemoveBan(ctx context.Context, guildID, userID, reason string) error

	SendDM(ctx context.Context, userID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
}

// restCode extracts the JSON error code of a Discord REST failure
func restCode(err error) int {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code
	}
	return 0
}

// IsUnknownMember reports a lookup of a user that is not in the guild
func IsUnknownMember(err error) bool {
	return restCode(err) == discordgo.ErrCodeUnknownMember
}

func isUnknownBan(err error) bool {
	return restCode(err) == discordgo.ErrCodeUnknownBan
}

func isCannotDM(err error) bool {
	return restCode(err) == discordgo.ErrCodeCannotSendMessagesToThisUser
}
