package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const (
	// SettleDelay gives Discord time to write the audit log entry
	SettleDelay = 3 * time.Second
	// matchWindow is how far an entry may be from the gateway event
	matchWindow = 30 * time.Second
	// entryLimit is how many recent entries are inspected per check
	entryLimit = 10
)

// Platform reads the guild audit log. *discord.Platform satisfies it.
type Platform interface {
	AuditLog(ctx context.Context, guildID string, actionType discordgo.AuditLogAction, limit int) (*discordgo.GuildAuditLog, error)
	BotID() string
}

// Check is one external action waiting to be confirmed by the audit log
type Check struct {
	GuildID string
	UserID  string
	Action  moderation.Action
	LogType discordgo.AuditLogAction
	At      time.Time
	// Until is the new timeout end for timeout checks
	Until *time.Time
}

func (c Check) key() string {
	key := Key(c.GuildID, c.UserID)
	if c.Action == moderation.ActionTimeout || c.Action == moderation.ActionUntimeout {
		key += ":timeout"
	}
	return key
}

// Watcher schedules and resolves checks
type Watcher struct {
	platform  Platform
	store     moderation.Store
	publisher moderation.Publisher
	registry  *Registry
	delay     time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	now       func() time.Time
}

// NewWatcher creates a Watcher. publisher may be nil.
func NewWatcher(p Platform, store moderation.Store, publisher moderation.Publisher) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		platform:  p,
		store:     store,
		publisher: publisher,
		registry:  NewRegistry(),
		delay:     SettleDelay,
		ctx:       ctx,
		cancel:    cancel,
		now:       time.Now,
	}
}

// Stop cancels every pending check and waits for running ones
func (w *Watcher) Stop() {
	n := w.registry.CancelAll()
	w.cancel()
	w.registry.Wait()
	if n > 0 {
		logger.Debug(fmt.Sprintf("%d comprobaciones de auditoría canceladas", n), "Audit")
	}
}

// Pending returns the number of scheduled checks
func (w *Watcher) Pending() int {
	return w.registry.Len()
}

// schedule replaces any pending check of the same member. Timeout checks use
// their own key so a ban does not drop them.
func (w *Watcher) schedule(c Check) {
	w.registry.ScheduleAs(w.ctx, c.key(), string(c.Action), w.delay, func(ctx context.Context) {
		if _, err := w.Resolve(ctx, c); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo revisar la auditoría de %s: %v", c.UserID, err), "Audit")
		}
	})
}

// OnBanAdd schedules a ban check
func (w *Watcher) OnBanAdd(guildID, userID string) {
	w.schedule(Check{GuildID: guildID, UserID: userID, Action: moderation.ActionBan, LogType: discordgo.AuditLogActionMemberBanAdd, At: w.now()})
}

// OnBanRemove schedules an unban check
func (w *Watcher) OnBanRemove(guildID, userID string) {
	w.schedule(Check{GuildID: guildID, UserID: userID, Action: moderation.ActionUnban, LogType: discordgo.AuditLogActionMemberBanRemove, At: w.now()})
}

// OnMemberRemove schedules a kick check. Plain leaves find no entry. A ban
// also removes the member, so a pending ban check is kept and the removal
// ignored.
func (w *Watcher) OnMemberRemove(guildID, userID string) {
	if label, ok := w.registry.Label(Key(guildID, userID)); ok && label == string(moderation.ActionBan) {
		return
	}
	w.schedule(Check{GuildID: guildID, UserID: userID, Action: moderation.ActionKick, LogType: discordgo.AuditLogActionMemberKick, At: w.now()})
}

// OnTimeoutChange schedules a timeout or untimeout check when the timeout end moved
func (w *Watcher) OnTimeoutChange(guildID, userID string, before, after *time.Time) {
	now := w.now()
	active := func(t *time.Time) bool { return t != nil && t.After(now) }

	switch {
	case active(after) && (!active(before) || !before.Equal(*after)):
		w.schedule(Check{GuildID: guildID, UserID: userID, Action: moderation.ActionTimeout, LogType: discordgo.AuditLogActionMemberUpdate, At: now, Until: after})
	case active(before) && !active(after):
		w.schedule(Check{GuildID: guildID, UserID: userID, Action: moderation.ActionUntimeout, LogType: discordgo.AuditLogActionMemberUpdate, At: now})
	}
}

// MatchEntry picks the newest entry about userID close to at. Entries made
// by the bot itself are already recorded, so a bot entry yields no match.
func MatchEntry(entries []*discordgo.AuditLogEntry, userID, botID string, at time.Time) *discordgo.AuditLogEntry {
	var best *discordgo.AuditLogEntry
	var bestAt time.Time
	for _, e := range entries {
		if e == nil || e.TargetID != userID {
			continue
		}
		t, err := discordgo.SnowflakeTimestamp(e.ID)
		if err != nil {
			continue
		}
		if d := at.Sub(t); d > matchWindow || d < -matchWindow {
			continue
		}
		if best == nil || t.After(bestAt) {
			best, bestAt = e, t
		}
	}
	if best == nil || best.UserID == botID {
		return nil
	}
	return best
}

// Resolve reads the audit log for c and records the matching entry.
// It returns nil when nothing needs recording.
func (w *Watcher) Resolve(ctx context.Context, c Check) (*models.ActionRecord, error) {
	log, err := w.platform.AuditLog(ctx, c.GuildID, c.LogType, entryLimit)
	if err != nil {
		return nil, err
	}

	entry := MatchEntry(log.AuditLogEntries, c.UserID, w.platform.BotID(), c.At)
	if entry == nil {
		return nil, nil
	}

	at, _ := discordgo.SnowflakeTimestamp(entry.ID)
	rec := &models.ActionRecord{
		GuildID:       c.GuildID,
		UserID:        c.UserID,
		Action:        string(c.Action),
		Body:          entry.Reason,
		StaffID:       entry.UserID,
		Timestamp:     at.UnixMilli(),
		ActionSuccess: true,
	}
	if c.Action == moderation.ActionTimeout && c.Until != nil {
		ms := c.Until.Sub(at).Milliseconds()
		rec.Timeout = &ms
	}

	id, err := w.store.Insert(ctx, rec)
	if err != nil {
		errors.Capture("Audit", err)
		return nil, err
	}
	rec.ID = id
	logger.Info(fmt.Sprintf("Acción externa registrada: %s sobre %s (caso #%d)", rec.Action, rec.UserID, rec.ID), "Audit")

	if w.publisher != nil {
		if err := w.publisher.PublishCreate(ctx, rec); err != nil {
			logger.Error(fmt.Sprintf("No se pudo publicar el caso #%d: %v", rec.ID, err), "Fanout")
		}
	}
	return rec, nil
}
