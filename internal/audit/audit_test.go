package audit

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const discordEpoch = 1420070400000

func snowflake(t time.Time) string {
	return strconv.FormatInt((t.UnixMilli()-discordEpoch)<<22, 10)
}

func TestRegistryRunsAfterDelay(t *testing.T) {
	r := NewRegistry()
	var ran atomic.Int32

	r.Schedule(context.Background(), "k", time.Millisecond, func(ctx context.Context) { ran.Add(1) })
	r.Wait()

	if ran.Load() != 1 {
		t.Errorf("ran = %d, want 1", ran.Load())
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestRegistryReplaceCancelsPrevious(t *testing.T) {
	r := NewRegistry()
	var mu sync.Mutex
	var ran []string

	r.Schedule(context.Background(), "k", time.Hour, func(ctx context.Context) {
		mu.Lock()
		ran = append(ran, "first")
		mu.Unlock()
	})
	r.Schedule(context.Background(), "k", time.Millisecond, func(ctx context.Context) {
		mu.Lock()
		ran = append(ran, "second")
		mu.Unlock()
	})
	r.Wait()

	if len(ran) != 1 || ran[0] != "second" {
		t.Errorf("ran = %v, want [second]", ran)
	}
}

func TestRegistryCancel(t *testing.T) {
	r := NewRegistry()
	var ran atomic.Int32

	r.Schedule(context.Background(), "a", time.Hour, func(ctx context.Context) { ran.Add(1) })
	r.Schedule(context.Background(), "b", time.Hour, func(ctx context.Context) { ran.Add(1) })
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	if !r.Cancel("a") {
		t.Error("Cancel(a) = false")
	}
	if r.Cancel("missing") {
		t.Error("Cancel(missing) = true")
	}
	if n := r.CancelAll(); n != 1 {
		t.Errorf("CancelAll() = %d, want 1", n)
	}
	r.Wait()

	if ran.Load() != 0 {
		t.Errorf("ran = %d, want 0", ran.Load())
	}
}

func TestMatchEntry(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	entry := func(id, target, user string, offset time.Duration) *discordgo.AuditLogEntry {
		return &discordgo.AuditLogEntry{ID: snowflake(at.Add(offset)), TargetID: target, UserID: user, Reason: id}
	}

	tests := []struct {
		name    string
		entries []*discordgo.AuditLogEntry
		want    string
	}{
		{"match", []*discordgo.AuditLogEntry{entry("a", "u", "mod", -time.Second)}, "a"},
		{"other target", []*discordgo.AuditLogEntry{entry("a", "x", "mod", -time.Second)}, ""},
		{"too old", []*discordgo.AuditLogEntry{entry("a", "u", "mod", -time.Minute)}, ""},
		{"newest wins", []*discordgo.AuditLogEntry{entry("old", "u", "mod", -10 * time.Second), entry("new", "u", "mod", -time.Second)}, "new"},
		{"bot action skipped", []*discordgo.AuditLogEntry{entry("a", "u", "bot", -time.Second)}, ""},
		{"bad id", []*discordgo.AuditLogEntry{{ID: "nope", TargetID: "u", UserID: "mod"}}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEntry(tt.entries, "u", "bot", at)
			reason := ""
			if got != nil {
				reason = got.Reason
			}
			if reason != tt.want {
				t.Errorf("MatchEntry() = %q, want %q", reason, tt.want)
			}
		})
	}
}

type fakePlatform struct {
	entries []*discordgo.AuditLogEntry
	// only limits entries to one log type when set
	only  discordgo.AuditLogAction
	err   error
	types []discordgo.AuditLogAction
}

func (p *fakePlatform) AuditLog(ctx context.Context, guildID string, actionType discordgo.AuditLogAction, limit int) (*discordgo.GuildAuditLog, error) {
	p.types = append(p.types, actionType)
	if p.err != nil {
		return nil, p.err
	}
	if p.only != 0 && p.only != actionType {
		return &discordgo.GuildAuditLog{}, nil
	}
	return &discordgo.GuildAuditLog{AuditLogEntries: p.entries}, nil
}

func (p *fakePlatform) BotID() string { return "bot" }

type fakeStore struct {
	records []*models.ActionRecord
}

func (s *fakeStore) Insert(ctx context.Context, rec *models.ActionRecord) (int64, error) {
	s.records = append(s.records, rec)
	return int64(len(s.records)), nil
}

type fakePublisher struct {
	published []int64
}

func (p *fakePublisher) PublishCreate(ctx context.Context, rec *models.ActionRecord) error {
	p.published = append(p.published, rec.ID)
	return nil
}

func TestResolveRecordsExternalTimeout(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	until := at.Add(time.Hour)
	platform := &fakePlatform{entries: []*discordgo.AuditLogEntry{
		{ID: snowflake(at), TargetID: "u", UserID: "mod", Reason: "flood"},
	}}
	store := &fakeStore{}
	pub := &fakePublisher{}
	w := NewWatcher(platform, store, pub)
	defer w.Stop()

	rec, err := w.Resolve(context.Background(), Check{
		GuildID: "g", UserID: "u", Action: "timeout",
		LogType: discordgo.AuditLogActionMemberUpdate, At: at, Until: &until,
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if rec == nil {
		t.Fatal("Resolve() = nil, want record")
	}
	if rec.StaffID != "mod" || rec.Body != "flood" || !rec.ActionSuccess {
		t.Errorf("record = %+v", rec)
	}
	if rec.Timeout == nil || *rec.Timeout != time.Hour.Milliseconds() {
		t.Errorf("Timeout = %v, want %d", rec.Timeout, time.Hour.Milliseconds())
	}
	if len(pub.published) != 1 || pub.published[0] != 1 {
		t.Errorf("published = %v, want [1]", pub.published)
	}
}

func TestResolveSkipsBotAndMissingEntries(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	platform := &fakePlatform{entries: []*discordgo.AuditLogEntry{
		{ID: snowflake(at), TargetID: "u", UserID: "bot"},
	}}
	store := &fakeStore{}
	w := NewWatcher(platform, store, nil)
	defer w.Stop()

	for _, user := range []string{"u", "left"} {
		rec, err := w.Resolve(context.Background(), Check{GuildID: "g", UserID: user, Action: "kick", At: at})
		if err != nil || rec != nil {
			t.Errorf("Resolve(%s) = %v, %v; want nil, nil", user, rec, err)
		}
	}
	if len(store.records) != 0 {
		t.Errorf("stored %d records, want 0", len(store.records))
	}
}

func TestResolveAuditLogError(t *testing.T) {
	w := NewWatcher(&fakePlatform{err: errors.New("missing permissions")}, &fakeStore{}, nil)
	defer w.Stop()

	if _, err := w.Resolve(context.Background(), Check{GuildID: "g", UserID: "u"}); err == nil {
		t.Error("Resolve() error = nil, want audit log failure")
	}
}

func TestBanReplacesPendingKick(t *testing.T) {
	platform := &fakePlatform{}
	w := NewWatcher(platform, &fakeStore{}, nil)
	w.delay = time.Hour

	w.OnMemberRemove("g", "u")
	w.OnBanAdd("g", "u")
	if w.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", w.Pending())
	}
	w.Stop()
	if w.Pending() != 0 {
		t.Errorf("Pending() after Stop = %d, want 0", w.Pending())
	}
}

func TestRemovalKeepsPendingBan(t *testing.T) {
	w := NewWatcher(&fakePlatform{}, &fakeStore{}, nil)
	w.delay = time.Hour
	defer w.Stop()

	w.OnBanAdd("g", "u")
	w.OnMemberRemove("g", "u")

	if w.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", w.Pending())
	}
	if label, _ := w.registry.Label(Key("g", "u")); label != "ban" {
		t.Errorf("pending check = %q, want ban", label)
	}
}

func TestBanThenRemovalRecordsBan(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	platform := &fakePlatform{
		only:    discordgo.AuditLogActionMemberBanAdd,
		entries: []*discordgo.AuditLogEntry{{ID: snowflake(at), TargetID: "u", UserID: "mod", Reason: "raid"}},
	}
	store := &fakeStore{}
	w := NewWatcher(platform, store, nil)
	w.delay = time.Millisecond
	w.now = func() time.Time { return at }

	w.OnBanAdd("g", "u")
	w.OnMemberRemove("g", "u")
	w.registry.Wait()
	w.Stop()

	if len(store.records) != 1 {
		t.Fatalf("stored %d records, want 1", len(store.records))
	}
	if rec := store.records[0]; rec.Action != "ban" || rec.StaffID != "mod" || rec.Body != "raid" {
		t.Errorf("record = %+v", rec)
	}
}

func TestTimeoutCheckSurvivesBan(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	until := now.Add(time.Hour)
	w := NewWatcher(&fakePlatform{}, &fakeStore{}, nil)
	w.delay = time.Hour
	w.now = func() time.Time { return now }
	defer w.Stop()

	w.OnTimeoutChange("g", "u", nil, &until)
	w.OnBanAdd("g", "u")

	if w.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", w.Pending())
	}
}

func TestOnTimeoutChange(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	later := now.Add(2 * time.Hour)

	tests := []struct {
		name          string
		before, after *time.Time
		want          bool
	}{
		{"set", nil, &future, true},
		{"extended", &future, &later, true},
		{"unchanged", &future, &future, false},
		{"cleared", &future, nil, true},
		{"expired", &past, nil, false},
		{"nothing", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWatcher(&fakePlatform{}, &fakeStore{}, nil)
			w.delay = time.Hour
			w.now = func() time.Time { return now }

			w.OnTimeoutChange("g", "u", tt.before, tt.after)
			if got := w.Pending() == 1; got != tt.want {
				t.Errorf("scheduled = %v, want %v", got, tt.want)
			}
			w.Stop()
		})
	}
}
