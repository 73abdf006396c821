package moderation

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func newTestWizard() (*Wizard, *fakePlatform, *fakeStore, *fakeResponder) {
	p := newFakePlatform()
	p.members["target"] = member("target", "member")
	store := &fakeStore{}
	r := &fakeResponder{}
	return NewWizard(NewService(p, store, nil), r), p, store, r
}

func componentInteraction(t *testing.T, st *State, customID string, values ...string) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		GuildID: testGuildID,
		Member:  member("staff", "mod"),
		Message: renderMessage(t, st, newPermissionSet()),
		Data: discordgo.MessageComponentInteractionData{
			CustomID: customID,
			Values:   values,
		},
	}
}

func lastUpdate(t *testing.T, r *fakeResponder) *MenuData {
	t.Helper()
	if len(r.responses) == 0 {
		t.Fatal("no response sent")
	}
	resp := r.responses[len(r.responses)-1]
	if resp.Type != discordgo.InteractionResponseUpdateMessage {
		t.Fatalf("response type = %v, want update message", resp.Type)
	}
	data, err := DecodeMenu(&discordgo.Message{Embeds: resp.Data.Embeds})
	if err != nil {
		t.Fatalf("DecodeMenu() error = %v", err)
	}
	return data
}

func TestWizardControls(t *testing.T) {
	tests := []struct {
		name     string
		customID string
		values   []string
		check    func(*MenuData) bool
	}{
		{"dm toggle", IDDM, nil, func(d *MenuData) bool { return d.DM }},
		{"action", IDAction, []string{"timeout"}, func(d *MenuData) bool { return d.Action == ActionTimeout }},
		{"timeout", IDTimeout, []string{"600000"}, func(d *MenuData) bool { return d.Timeout == 600_000 }},
		{"purge", IDPurge, []string{"86400"}, func(d *MenuData) bool { return d.DeleteMessageSeconds == 86_400 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, p, _, r := newTestWizard()
			st := NewState(p.guild, memberTarget(p.members["target"]), member("staff", "mod"))

			if err := w.HandleComponent(context.Background(), componentInteraction(t, st, tt.customID, tt.values...)); err != nil {
				t.Fatalf("HandleComponent() error = %v", err)
			}
			if d := lastUpdate(t, r); !tt.check(d) {
				t.Errorf("state after %s = %+v", tt.name, d)
			}
			if len(p.Calls()) != 0 {
				t.Errorf("control changes must not act: %v", p.Calls())
			}
		})
	}
}

func TestWizardBodyModal(t *testing.T) {
	w, p, _, r := newTestWizard()
	st := NewState(p.guild, memberTarget(p.members["target"]), member("staff", "mod"))
	st.Body = "previo"

	if err := w.HandleComponent(context.Background(), componentInteraction(t, st, IDBody)); err != nil {
		t.Fatalf("HandleComponent() error = %v", err)
	}
	resp := r.responses[0]
	if resp.Type != discordgo.InteractionResponseModal || resp.Data.CustomID != IDBody {
		t.Fatalf("response = %+v, want the body modal", resp)
	}

	submit := &discordgo.Interaction{
		Type:    discordgo.InteractionModalSubmit,
		GuildID: testGuildID,
		Member:  member("staff", "mod"),
		Message: renderMessage(t, st, newPermissionSet()),
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: IDBody,
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: BodyInputID, Value: "  nueva razón  "},
				}},
			},
		},
	}
	if err := w.HandleModal(context.Background(), submit); err != nil {
		t.Fatalf("HandleModal() error = %v", err)
	}
	if d := lastUpdate(t, r); d.Body != "nueva razón" {
		t.Errorf("Body = %q, want the trimmed submission", d.Body)
	}
}

func TestWizardConfirm(t *testing.T) {
	w, p, store, r := newTestWizard()
	st := NewState(p.guild, memberTarget(p.members["target"]), member("staff", "mod"))
	st.Action = ActionKick
	st.DM = true
	st.Body = "spam"

	if err := w.HandleComponent(context.Background(), componentInteraction(t, st, IDConfirm)); err != nil {
		t.Fatalf("HandleComponent() error = %v", err)
	}

	if len(r.responses) != 1 {
		t.Fatalf("responses = %d, want 1", len(r.responses))
	}
	for _, row := range r.responses[0].Data.Components {
		for _, c := range row.(discordgo.ActionsRow).Components {
			if b, ok := c.(discordgo.Button); ok && !b.Disabled {
				t.Errorf("button %s enabled while confirming", b.CustomID)
			}
		}
	}

	if len(r.edits) != 1 {
		t.Fatalf("edits = %d, want the summary", len(r.edits))
	}
	if len(r.edits[0].components) != 0 {
		t.Error("summary must remove the controls")
	}
	if r.edits[0].embeds[0].Color != colorSuccess {
		t.Errorf("summary color = %#x, want success", r.edits[0].embeds[0].Color)
	}
	if calls := p.Calls(); len(calls) != 2 || calls[0] != "dm" || calls[1] != "kick" {
		t.Errorf("calls = %v, want [dm kick]", calls)
	}
	if len(store.records) != 1 {
		t.Errorf("records = %d, want 1", len(store.records))
	}
}

func TestWizardConfirmDenied(t *testing.T) {
	w, p, store, r := newTestWizard()
	st := NewState(p.guild, memberTarget(p.members["target"]), member("staff", "mod"))
	st.Action = ActionKick

	i := componentInteraction(t, st, IDConfirm)
	i.Member = member("staff", "lowmod")

	if err := w.HandleComponent(context.Background(), i); err != nil {
		t.Fatalf("HandleComponent() error = %v", err)
	}
	if len(p.Calls()) != 0 || len(store.records) != 0 {
		t.Error("a denied confirmation must not act or record")
	}
	if len(r.followups) != 1 {
		t.Errorf("followups = %v, want one explanation", r.followups)
	}
	if len(r.edits) != 1 || len(r.edits[0].components) == 0 {
		t.Error("the menu should be restored after a denied confirmation")
	}
}

func TestWizardInvalidMenu(t *testing.T) {
	w, _, _, r := newTestWizard()
	i := &discordgo.Interaction{
		Type:    discordgo.InteractionMessageComponent,
		GuildID: testGuildID,
		Member:  member("staff", "mod"),
		Message: &discordgo.Message{},
		Data:    discordgo.MessageComponentInteractionData{CustomID: IDDM},
	}

	if err := w.HandleComponent(context.Background(), i); err != nil {
		t.Fatalf("HandleComponent() error = %v", err)
	}
	if resp := r.responses[0]; resp.Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Errorf("response = %+v, want an ephemeral error", resp)
	}
}

func TestWizardOpen(t *testing.T) {
	w, _, _, r := newTestWizard()
	i := &discordgo.Interaction{
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: testGuildID,
		Member:  member("staff", "mod"),
	}

	if err := w.Open(context.Background(), i, "target"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	resp := r.responses[0]
	data, err := DecodeMenu(&discordgo.Message{Embeds: resp.Data.Embeds})
	if err != nil {
		t.Fatalf("DecodeMenu() error = %v", err)
	}
	if data.Action != ActionRestrain || data.DM {
		t.Errorf("opened menu = %+v, want the defaults", data)
	}
	if resp.Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Error("the menu should be ephemeral")
	}
}
