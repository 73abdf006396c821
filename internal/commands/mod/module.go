// Package mod provides moderation commands organized as subcommands under /mod
// Each command is in its own file for better organization
package mod

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/internal/modlog"
	"github.com/PancyStudios/PancyModGo/pkg/actionlog"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/storage"
	"github.com/bwmarrin/discordgo"
)

// commandTimeout bounds the REST and store calls of one command
const commandTimeout = 30 * time.Second

// Module holds the collaborators of the moderation commands
type Module struct {
	Service  *moderation.Service
	Wizard   *moderation.Wizard
	Store    *actionlog.Store
	Notifier *modlog.Notifier
	// Uploader is nil when no object store is configured; attachments then
	// keep their Discord CDN URLs.
	Uploader *storage.Uploader
}

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "usuario",
		Description: description,
		Required:    true,
	}
}

func reasonOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "razon",
		Description: "Razón de la acción",
		Required:    required,
		MaxLength:   moderation.MaxBodyLength,
	}
}

func dmOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "dm",
		Description: "Avisar al usuario por mensaje directo (por defecto sí si hay razón)",
	}
}

func caseOption(description string) *discordgo.ApplicationCommandOption {
	min := 1.0
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "id",
		Description: description,
		Required:    true,
		MinValue:    &min,
	}
}

// newState builds the state of a quick command from its options
func (m *Module) newState(ctx context.Context, cmd *discord.CommandContext, action moderation.Action) (*moderation.State, error) {
	i := cmd.Interaction.Interaction
	user := cmd.GetUserOption("usuario")
	if user == nil {
		return nil, fmt.Errorf("missing user option")
	}

	guild, err := m.Service.Platform.Guild(ctx, i.GuildID)
	if err != nil {
		return nil, fmt.Errorf("resolve guild %s: %w", i.GuildID, err)
	}
	target, err := moderation.ResolveTarget(ctx, m.Service.Platform, i.GuildID, user.ID)
	if err != nil {
		return nil, err
	}

	st := moderation.NewState(guild, target, i.Member)
	st.Action = action
	st.Body = cmd.GetStringOption("razon")
	var explicit *bool
	if opt := cmd.GetOption("dm"); opt != nil {
		v := opt.BoolValue()
		explicit = &v
	}
	st.DM = wantsDM(st.Body, explicit)
	return st, nil
}

// wantsDM decides whether a quick command messages the user. Without the dm
// option the user is only messaged when there is a reason to send.
func wantsDM(body string, explicit *bool) bool {
	if explicit != nil {
		return *explicit
	}
	return body != ""
}

// runQuick applies a quick command through the same pipeline as the wizard
func (m *Module) runQuick(cmd *discord.CommandContext, action moderation.Action, configure func(st *moderation.State)) error {
	if cmd.Interaction.Member == nil {
		return cmd.ReplyEphemeral("❌ Este comando solo funciona dentro de un servidor.")
	}
	if err := cmd.DeferEphemeral(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	st, err := m.newState(ctx, cmd, action)
	if err != nil {
		_ = cmd.EditReply("❌ No se encontró al usuario.")
		return err
	}
	if configure != nil {
		configure(st)
	}

	out, err := m.Service.Confirm(ctx, st)
	if err != nil {
		return cmd.EditReply(moderation.ConfirmErrorMessage(err))
	}
	return cmd.EditReplyEmbed(moderation.RenderSummary(st, out))
}

// isStaff reports whether the invoking member may see and change any record
func isStaff(cmd *discord.CommandContext) bool {
	return cmd.HasPermission(discordgo.PermissionModerateMembers)
}
