package actionlog

import (
	"context"
	"errors"
	"testing"

	"github.com/PancyStudios/PancyModGo/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func int64Ptr(v int64) *int64 { return &v }

func sampleRecord(userID string) *models.ActionRecord {
	return &models.ActionRecord{
		GuildID:       "guild-1",
		UserID:        userID,
		Action:        "timeout",
		Body:          "spam",
		DM:            true,
		StaffID:       "staff-1",
		Timeout:       int64Ptr(60000),
		Timestamp:     1700000000000,
		DMSuccess:     false,
		ActionSuccess: true,
	}
}

func TestInsertAndSelectByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("user-1")
	id, err := s.Insert(ctx, rec)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if id <= 0 || rec.ID != id {
		t.Fatalf("Insert() id = %d, rec.ID = %d", id, rec.ID)
	}

	got, err := s.SelectByID(ctx, id)
	if err != nil {
		t.Fatalf("SelectByID() error: %v", err)
	}
	if got.Action != "timeout" || got.Body != "spam" || !got.DM || got.DMSuccess || !got.ActionSuccess {
		t.Errorf("SelectByID() = %+v", got)
	}
	if got.Timeout == nil || *got.Timeout != 60000 {
		t.Errorf("Timeout = %v, want 60000", got.Timeout)
	}
	if got.TimedOutUntil != nil || got.DeleteMessageSeconds != nil {
		t.Errorf("nullable fields should stay NULL, got %+v", got)
	}
	if got.Revoked || got.Hidden {
		t.Error("new records must not be revoked or hidden")
	}
}

func TestIDsIncrement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, _ := s.Insert(ctx, sampleRecord("a"))
	second, _ := s.Insert(ctx, sampleRecord("b"))
	if second != first+1 {
		t.Errorf("ids = %d, %d; want consecutive", first, second)
	}
}

func TestSelectByIDNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SelectByID(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("SelectByID() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateFlagsKeepsRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.Insert(ctx, sampleRecord("user-1"))

	revoked := true
	if err := s.Update(ctx, id, Patch{Revoked: &revoked}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	got, err := s.SelectByID(ctx, id)
	if err != nil {
		t.Fatalf("SelectByID() after revoke error: %v", err)
	}
	if !got.Revoked || got.Hidden {
		t.Errorf("flags = revoked %v hidden %v, want true false", got.Revoked, got.Hidden)
	}

	hidden := true
	if err := s.Update(ctx, id, Patch{Hidden: &hidden}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	got, _ = s.SelectByID(ctx, id)
	if !got.Revoked || !got.Hidden {
		t.Errorf("flags = revoked %v hidden %v, want true true", got.Revoked, got.Hidden)
	}

	if err := s.Update(ctx, id+100, Patch{Hidden: &hidden}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.Update(ctx, id, Patch{}); err != nil {
		t.Errorf("Update(empty patch) error = %v, want nil", err)
	}
}

func TestSelectByUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Insert(ctx, sampleRecord("user-1"))
	other := sampleRecord("user-1")
	other.GuildID = "guild-2"
	s.Insert(ctx, other)
	s.Insert(ctx, sampleRecord("user-2"))

	all, err := s.SelectByUser(ctx, "", "user-1")
	if err != nil {
		t.Fatalf("SelectByUser() error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("SelectByUser(all guilds) = %d records, want 2", len(all))
	}
	if all[0].ID < all[1].ID {
		t.Error("SelectByUser() should return newest first")
	}

	inGuild, _ := s.SelectByUser(ctx, "guild-2", "user-1")
	if len(inGuild) != 1 || inGuild[0].GuildID != "guild-2" {
		t.Errorf("SelectByUser(guild-2) = %+v", inGuild)
	}

	none, _ := s.SelectByUser(ctx, "", "nobody")
	if none == nil || len(none) != 0 {
		t.Errorf("SelectByUser(nobody) = %v, want empty slice", none)
	}
}

func TestLogMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.Insert(ctx, sampleRecord("user-1"))

	inserted, err := s.InsertLogMessage(ctx, models.LogMessage{MessageID: "m1", ChannelID: "c1", ActionID: id})
	if err != nil || !inserted {
		t.Fatalf("InsertLogMessage() = %v, %v", inserted, err)
	}
	inserted, err = s.InsertLogMessage(ctx, models.LogMessage{MessageID: "m1", ChannelID: "c1", ActionID: id})
	if err != nil || inserted {
		t.Errorf("duplicate InsertLogMessage() = %v, %v; want false, nil", inserted, err)
	}
	s.InsertLogMessage(ctx, models.LogMessage{MessageID: "m2", ChannelID: "c2", ActionID: id})

	logs, err := s.SelectLogsByAction(ctx, id)
	if err != nil {
		t.Fatalf("SelectLogsByAction() error: %v", err)
	}
	if len(logs) != 2 || logs[0].ChannelID != "c1" || logs[1].ChannelID != "c2" {
		t.Errorf("SelectLogsByAction() = %+v", logs)
	}

	if err := s.DeleteLogMessage(ctx, logs[1]); err != nil {
		t.Fatalf("DeleteLogMessage() error: %v", err)
	}
	logs, _ = s.SelectLogsByAction(ctx, id)
	if len(logs) != 1 || logs[0].ChannelID != "c1" {
		t.Errorf("SelectLogsByAction() after delete = %+v", logs)
	}
}

func TestClaimLogChannel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.Insert(ctx, sampleRecord("user-1"))

	won, err := s.ClaimLogChannel(ctx, id, "c1")
	if err != nil || !won {
		t.Fatalf("ClaimLogChannel() = %v, %v; want true, nil", won, err)
	}
	won, err = s.ClaimLogChannel(ctx, id, "c1")
	if err != nil || won {
		t.Errorf("second ClaimLogChannel() = %v, %v; want false, nil", won, err)
	}
	if won, _ := s.ClaimLogChannel(ctx, id, "c2"); !won {
		t.Error("ClaimLogChannel(c2) = false, want true")
	}

	if err := s.ReleaseLogChannel(ctx, id, "c1"); err != nil {
		t.Fatalf("ReleaseLogChannel() error: %v", err)
	}
	if won, _ := s.ClaimLogChannel(ctx, id, "c1"); !won {
		t.Error("ClaimLogChannel() after release = false, want true")
	}

	// Deleting a copy frees its channel for a later post.
	s.InsertLogMessage(ctx, models.LogMessage{MessageID: "m2", ChannelID: "c2", ActionID: id})
	if err := s.DeleteLogMessage(ctx, models.LogMessage{MessageID: "m2", ChannelID: "c2", ActionID: id}); err != nil {
		t.Fatalf("DeleteLogMessage() error: %v", err)
	}
	if won, _ := s.ClaimLogChannel(ctx, id, "c2"); !won {
		t.Error("ClaimLogChannel(c2) after delete = false, want true")
	}
}

func TestAttachmentsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.Insert(ctx, sampleRecord("user-1"))

	batch := []models.AttachmentRecord{
		{URL: "https://cdn/1.png", ContentType: "image/png"},
		{URL: "https://cdn/2.png", ContentType: "image/png"},
		{URL: "https://cdn/3.png", ContentType: "image/png"},
	}
	stored, err := s.InsertAttachments(ctx, id, batch)
	if err != nil {
		t.Fatalf("InsertAttachments() error: %v", err)
	}
	if len(stored) != 3 || stored[0].ID == 0 || stored[0].ActionID != id {
		t.Errorf("InsertAttachments() = %+v", stored)
	}

	_, err = s.InsertAttachments(ctx, id, batch[:2])
	if !errors.Is(err, ErrTooManyAttachments) {
		t.Errorf("InsertAttachments(over limit) error = %v, want ErrTooManyAttachments", err)
	}

	got, _ := s.SelectAttachments(ctx, id)
	if len(got) != 3 {
		t.Errorf("SelectAttachments() = %d, want 3 (rejected batch must roll back)", len(got))
	}

	if _, err := s.InsertAttachments(ctx, id+50, batch[:1]); !errors.Is(err, ErrNotFound) {
		t.Errorf("InsertAttachments(missing action) error = %v, want ErrNotFound", err)
	}
}
