package moderation

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const (
	testGuildID = "g1"
	testOwnerID = "owner"
)

func restErr(code int) error {
	return &discordgo.RESTError{
		Response:     &http.Response{Status: "400 Bad Request", StatusCode: http.StatusBadRequest},
		ResponseBody: []byte(`{"message":"test"}`),
		Message:      &discordgo.APIErrorMessage{Code: code, Message: "test"},
	}
}

const modPerms = discordgo.PermissionKickMembers | discordgo.PermissionBanMembers | discordgo.PermissionModerateMembers

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      testGuildID,
		Name:    "Pancy",
		OwnerID: testOwnerID,
		Roles: []*discordgo.Role{
			{ID: testGuildID, Name: "@everyone", Position: 0},
			{ID: "member", Position: 1},
			{ID: "lowmod", Position: 1, Permissions: modPerms},
			{ID: "adminlow", Position: 2, Permissions: discordgo.PermissionAdministrator},
			{ID: "helper", Position: 4, Permissions: discordgo.PermissionModerateMembers},
			{ID: "mod", Position: 5, Permissions: modPerms},
			{ID: "botrole", Position: 8, Permissions: modPerms},
			{ID: "high", Position: 9},
		},
	}
}

func member(id string, roles ...string) *discordgo.Member {
	return &discordgo.Member{
		GuildID: testGuildID,
		User:    &discordgo.User{ID: id, Username: id},
		Roles:   roles,
	}
}

func memberTarget(m *discordgo.Member) Target {
	return Target{User: m.User, Member: m}
}

func userTarget(id string) Target {
	return Target{User: &discordgo.User{ID: id, Username: id}}
}

// fakePlatform records the side-effecting calls in order
type fakePlatform struct {
	mu    sync.Mutex
	calls []string

	guild   *discordgo.Guild
	bot     *discordgo.Member
	members map[string]*discordgo.Member
	bans    map[string]bool

	banLookupErr error
	kickErr      error
	timeoutErr   error
	createBanErr error
	removeBanErr error
	dmErr        error
	panicOn      string

	lastUntil     *time.Time
	lastDeleteSec int
	lastReason    string
	lastDM        *discordgo.MessageSend
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		guild:   testGuild(),
		bot:     member("bot", "botrole"),
		members: map[string]*discordgo.Member{},
		bans:    map[string]bool{},
	}
}

func (f *fakePlatform) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.panicOn == call {
		panic("boom")
	}
}

func (f *fakePlatform) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePlatform) User(_ context.Context, userID string) (*discordgo.User, error) {
	if m, ok := f.members[userID]; ok {
		return m.User, nil
	}
	return &discordgo.User{ID: userID, Username: userID}, nil
}

func (f *fakePlatform) Member(_ context.Context, _, userID string) (*discordgo.Member, error) {
	if m, ok := f.members[userID]; ok {
		return m, nil
	}
	return nil, restErr(discordgo.ErrCodeUnknownMember)
}

func (f *fakePlatform) Guild(_ context.Context, _ string) (*discordgo.Guild, error) {
	return f.guild, nil
}

func (f *fakePlatform) BotMember(_ context.Context, _ string) (*discordgo.Member, error) {
	if f.bot == nil {
		return nil, errors.New("no bot member")
	}
	return f.bot, nil
}

func (f *fakePlatform) Ban(_ context.Context, _, userID string) (*discordgo.GuildBan, error) {
	if f.banLookupErr != nil {
		return nil, f.banLookupErr
	}
	if f.bans[userID] {
		return &discordgo.GuildBan{User: &discordgo.User{ID: userID}}, nil
	}
	return nil, restErr(discordgo.ErrCodeUnknownBan)
}

func (f *fakePlatform) Kick(_ context.Context, _, _, reason string) error {
	f.record("kick")
	f.lastReason = reason
	return f.kickErr
}

func (f *fakePlatform) Timeout(_ context.Context, _, _ string, until *time.Time, reason string) error {
	if until == nil {
		f.record("untimeout")
	} else {
		f.record("timeout")
	}
	f.lastUntil = until
	f.lastReason = reason
	return f.timeoutErr
}

func (f *fakePlatform) CreateBan(_ context.Context, _, _, reason string, deleteMessageSeconds int) error {
	f.record("ban")
	f.lastDeleteSec = deleteMessageSeconds
	f.lastReason = reason
	return f.createBanErr
}

func (f *fakePlatform) RemoveBan(_ context.Context, _, _, _ string) error {
	f.record("unban")
	return f.removeBanErr
}

func (f *fakePlatform) SendDM(_ context.Context, userID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	f.record("dm")
	f.lastDM = msg
	if f.dmErr != nil {
		return nil, f.dmErr
	}
	return &discordgo.Message{ID: "dm-" + userID}, nil
}

// fakeStore keeps inserted records in memory
type fakeStore struct {
	mu      sync.Mutex
	records []*models.ActionRecord
	err     error
}

func (s *fakeStore) Insert(_ context.Context, rec *models.ActionRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.records = append(s.records, rec)
	return int64(len(s.records)), nil
}

type fakePublisher struct {
	published []*models.ActionRecord
	err       error
}

func (p *fakePublisher) PublishCreate(_ context.Context, rec *models.ActionRecord) error {
	p.published = append(p.published, rec)
	return p.err
}

// fakeResponder captures interaction responses and edits
type fakeResponder struct {
	responses []*discordgo.InteractionResponse
	edits     []edit
	followups []string
}

type edit struct {
	embeds     []*discordgo.MessageEmbed
	components []discordgo.MessageComponent
}

func (r *fakeResponder) Respond(_ context.Context, _ *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	r.responses = append(r.responses, resp)
	return nil
}

func (r *fakeResponder) Edit(_ context.Context, _ *discordgo.Interaction, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	r.edits = append(r.edits, edit{embeds: embeds, components: components})
	return nil
}

func (r *fakeResponder) Followup(_ context.Context, _ *discordgo.Interaction, content string) error {
	r.followups = append(r.followups, content)
	return nil
}
