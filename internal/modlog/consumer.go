package modlog

import (
	"context"
	"fmt"
	"sync"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"
)

// maxParallelPosts bounds the concurrent REST calls of one event
const maxParallelPosts = 4

// seenCapacity is how many handled event ids are remembered for dedupe
const seenCapacity = 1024

// Store is the part of the action log the consumer reads and writes.
// *actionlog.Store satisfies it.
type Store interface {
	SelectByID(ctx context.Context, id int64) (*models.ActionRecord, error)
	SelectAttachments(ctx context.Context, actionID int64) ([]models.AttachmentRecord, error)
	SelectLogsByAction(ctx context.Context, actionID int64) ([]models.LogMessage, error)
	ClaimLogChannel(ctx context.Context, actionID int64, channelID string) (bool, error)
	ReleaseLogChannel(ctx context.Context, actionID int64, channelID string) error
	InsertLogMessage(ctx context.Context, msg models.LogMessage) (bool, error)
	DeleteLogMessage(ctx context.Context, msg models.LogMessage) error
}

// Poster posts, edits and removes log messages. *discord.Platform satisfies it.
type Poster interface {
	Send(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
	EditEmbeds(ctx context.Context, channelID, messageID string, embeds []*discordgo.MessageEmbed) error
	Delete(ctx context.Context, channelID, messageID string) error
}

// Directory resolves the log channels of an action.
// *config.GuildDirectory satisfies it.
type Directory interface {
	LogChannels(originGuildID string, hidden bool) []string
}

// Consumer turns fan-out events into posted and edited log messages.
// Delivery is at-least-once: repeated events are recognised by id, and a
// channel is claimed in the store before posting, so it never receives a
// second copy even when several instances handle the same event.
type Consumer struct {
	store  Store
	poster Poster
	dir    Directory

	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

// NewConsumer creates a Consumer
func NewConsumer(store Store, poster Poster, dir Directory) *Consumer {
	return &Consumer{
		store:  store,
		poster: poster,
		dir:    dir,
		seen:   make(map[string]struct{}),
	}
}

func (c *Consumer) handled(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[id]
	return ok
}

func (c *Consumer) markHandled(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[id]; ok {
		return
	}
	c.seen[id] = struct{}{}
	c.order = append(c.order, id)
	if len(c.order) > seenCapacity {
		delete(c.seen, c.order[0])
		c.order = c.order[1:]
	}
}

// Handle processes one event
func (c *Consumer) Handle(ctx context.Context, ev Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if ev.ID != "" && c.handled(ev.ID) {
		logger.Debug(fmt.Sprintf("Evento %s repetido, ignorado", ev.ID), "Fanout")
		return nil
	}

	rec, err := c.store.SelectByID(ctx, ev.ActionID)
	if err != nil {
		return err
	}
	attachments, err := c.store.SelectAttachments(ctx, ev.ActionID)
	if err != nil {
		return err
	}
	embeds := LogEmbeds(rec, attachments)

	switch ev.Type {
	case EventCreate:
		err = c.post(ctx, rec, embeds)
	default:
		err = c.edit(ctx, rec, embeds)
		if err == nil {
			// A visibility change adds or removes mirror copies.
			err = c.post(ctx, rec, embeds)
		}
	}
	if err != nil {
		return err
	}

	if ev.ID != "" {
		c.markHandled(ev.ID)
	}
	return nil
}

// post sends one copy to every log channel this consumer manages to claim
func (c *Consumer) post(ctx context.Context, rec *models.ActionRecord, embeds []*discordgo.MessageEmbed) error {
	channels := c.dir.LogChannels(rec.GuildID, rec.Hidden)
	if len(channels) == 0 {
		logger.Debug(fmt.Sprintf("Sin canales de registro para el caso #%d", rec.ID), "Fanout")
		return nil
	}

	// Channels are independent; one failing must not cancel the others.
	var g errgroup.Group
	g.SetLimit(maxParallelPosts)
	for _, channelID := range channels {
		channelID := channelID
		g.Go(func() error {
			won, err := c.store.ClaimLogChannel(ctx, rec.ID, channelID)
			if err != nil {
				return err
			}
			if !won {
				return nil
			}

			msg, err := c.poster.Send(ctx, channelID, &discordgo.MessageSend{Embeds: embeds})
			if err != nil {
				if rerr := c.store.ReleaseLogChannel(context.WithoutCancel(ctx), rec.ID, channelID); rerr != nil {
					logger.Error(fmt.Sprintf("No se pudo liberar %s del caso #%d: %v", channelID, rec.ID, rerr), "Fanout")
				}
				return fmt.Errorf("post case %d to %s: %w", rec.ID, channelID, err)
			}

			_, err = c.store.InsertLogMessage(ctx, models.LogMessage{
				MessageID: msg.ID,
				ChannelID: channelID,
				ActionID:  rec.ID,
			})
			return err
		})
	}
	return g.Wait()
}

// edit refreshes every posted copy and removes the copies a hidden action
// no longer belongs in. A failed copy does not stop the others.
func (c *Consumer) edit(ctx context.Context, rec *models.ActionRecord, embeds []*discordgo.MessageEmbed) error {
	logs, err := c.store.SelectLogsByAction(ctx, rec.ID)
	if err != nil {
		return err
	}

	visible := make(map[string]bool)
	for _, channelID := range c.dir.LogChannels(rec.GuildID, rec.Hidden) {
		visible[channelID] = true
	}

	var g errgroup.Group
	g.SetLimit(maxParallelPosts)
	for _, l := range logs {
		l := l
		if rec.Hidden && !visible[l.ChannelID] {
			g.Go(func() error { return c.remove(ctx, l) })
			continue
		}
		g.Go(func() error {
			if err := c.poster.EditEmbeds(ctx, l.ChannelID, l.MessageID, embeds); err != nil {
				logger.Warn(fmt.Sprintf("No se pudo editar el registro %s en %s: %v", l.MessageID, l.ChannelID, err), "Fanout")
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// remove deletes a posted copy and forgets it
func (c *Consumer) remove(ctx context.Context, l models.LogMessage) error {
	if err := c.poster.Delete(ctx, l.ChannelID, l.MessageID); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo borrar el registro %s en %s: %v", l.MessageID, l.ChannelID, err), "Fanout")
		return err
	}
	return c.store.DeleteLogMessage(ctx, l)
}
