// Package mod - /mod attach command
package mod

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyModGo/pkg/actionlog"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/PancyStudios/PancyModGo/pkg/storage"
	"github.com/bwmarrin/discordgo"
)

var imageOptions = []string{"imagen1", "imagen2", "imagen3", "imagen4"}

// createAttachCommand creates the /mod attach subcommand
func (m *Module) createAttachCommand() *discord.Command {
	opts := []*discordgo.ApplicationCommandOption{caseOption("Número de caso")}
	for n, name := range imageOptions {
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionAttachment,
			Name:        name,
			Description: "Imagen de evidencia",
			Required:    n == 0,
		})
	}

	return discord.NewCommand(
		"attach",
		"Adjunta imágenes de evidencia a un caso",
		"mod",
		m.attachHandler,
	).WithOptions(opts...).WithUserPermissions(discordgo.PermissionModerateMembers).InGuild()
}

// attachHandler stores up to four images on a case of this guild
func (m *Module) attachHandler(ctx *discord.CommandContext) error {
	id := ctx.GetIntOption("id")

	var files []*discordgo.MessageAttachment
	for _, name := range imageOptions {
		a := ctx.GetAttachmentOption(name)
		if a == nil {
			continue
		}
		if !strings.HasPrefix(a.ContentType, "image/") {
			return ctx.ReplyEphemeral(fmt.Sprintf("❌ `%s` no es una imagen.", a.Filename))
		}
		files = append(files, a)
	}
	if len(files) == 0 {
		return ctx.ReplyEphemeral("❌ Adjunta al menos una imagen.")
	}

	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	c, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	rec, err := m.Store.SelectByID(c, id)
	if errors.Is(err, actionlog.ErrNotFound) || (err == nil && rec.GuildID != ctx.Interaction.GuildID) {
		return ctx.EditReply(fmt.Sprintf("❌ No existe el caso #%d en este servidor.", id))
	}
	if err != nil {
		_ = ctx.EditReply("❌ No se pudo leer el caso.")
		return err
	}

	existing, err := m.Store.SelectAttachments(c, id)
	if err != nil {
		_ = ctx.EditReply("❌ No se pudo leer el caso.")
		return err
	}
	if len(existing)+len(files) > actionlog.MaxAttachments {
		return ctx.EditReply(fmt.Sprintf("❌ Un caso admite como máximo %d imágenes (ya tiene %d).", actionlog.MaxAttachments, len(existing)))
	}

	records := make([]models.AttachmentRecord, 0, len(files))
	for n, a := range files {
		url := a.URL
		if m.Uploader != nil {
			key := storage.ObjectKey(id, len(existing)+n+1, a.Filename)
			if url, err = m.Uploader.Mirror(c, key, a.URL, a.ContentType); err != nil {
				_ = ctx.EditReply("❌ No se pudo guardar la imagen.")
				return err
			}
		}
		records = append(records, models.AttachmentRecord{URL: url, ContentType: a.ContentType})
	}

	if _, err := m.Store.InsertAttachments(c, id, records); err != nil {
		if errors.Is(err, actionlog.ErrTooManyAttachments) {
			return ctx.EditReply(fmt.Sprintf("❌ Un caso admite como máximo %d imágenes.", actionlog.MaxAttachments))
		}
		_ = ctx.EditReply("❌ No se pudieron guardar las imágenes.")
		return err
	}

	if err := m.Notifier.PublishAttachments(c, rec); err != nil {
		logger.Error(fmt.Sprintf("No se pudo publicar las imágenes del caso #%d: %v", id, err), "Fanout")
	}
	return ctx.EditReply(fmt.Sprintf("📎 %d imagen(es) añadidas al caso #%d.", len(records), id))
}
