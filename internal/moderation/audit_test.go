package moderation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/actionlog"
)

func TestTryInsertRecordsEveryAttempt(t *testing.T) {
	tests := []struct {
		name string
		act  ActionStatus
		dm   DmStatus
	}{
		{"both failed", ActionStatus{Error: ActionErrUnknown}, DmStatus{Error: DmErrActionFailed}},
		{"dm failed", ActionStatus{Success: true}, DmStatus{Error: DmErrCannotSend}},
		{"both succeeded", ActionStatus{Success: true}, DmStatus{Success: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			st := stateFor(memberTarget(member("target", "member")), ActionWarn)

			status, rec := TryInsert(context.Background(), store, st, tt.act, tt.dm)
			if !status.Success || status.ID != 1 {
				t.Fatalf("TryInsert() = %+v, want success with id 1", status)
			}
			if len(store.records) != 1 {
				t.Fatalf("records = %d, want 1", len(store.records))
			}
			got := store.records[0]
			if got.DMSuccess != tt.dm.Success || got.ActionSuccess != tt.act.Success {
				t.Errorf("flags = dm %v action %v, want dm %v action %v",
					got.DMSuccess, got.ActionSuccess, tt.dm.Success, tt.act.Success)
			}
			if rec.ID != 1 {
				t.Errorf("record id = %d, want 1", rec.ID)
			}
		})
	}
}

func TestTryInsertStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	st := stateFor(userTarget("gone"), ActionNote)
	st.Body = "observado"

	status, _ := TryInsert(context.Background(), store, st, ActionStatus{Success: true}, DmStatus{Success: true})
	if status.Success {
		t.Fatal("TryInsert() should fail when the store fails")
	}
	if status.Err == nil || !errors.Is(status.Err, store.err) {
		t.Errorf("Err = %v, want wrapping %v", status.Err, store.err)
	}
}

func TestNewRecordFields(t *testing.T) {
	until := time.Now().Add(time.Hour)
	target := member("target", "member")
	target.CommunicationDisabledUntil = &until

	tests := []struct {
		action      Action
		wantTimeout bool
		wantUntil   bool
		wantPurge   bool
	}{
		{ActionTimeout, true, false, false},
		{ActionRestrain, true, false, false},
		{ActionUntimeout, false, true, false},
		{ActionBan, false, false, true},
		{ActionWarn, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			st := stateFor(memberTarget(target), tt.action)
			st.Timeout = 60_000
			st.DeleteMessageSeconds = 86_400

			rec := NewRecord(st, ActionStatus{Success: true}, DmStatus{Success: true})
			if (rec.Timeout != nil) != tt.wantTimeout {
				t.Errorf("Timeout = %v, want set %v", rec.Timeout, tt.wantTimeout)
			}
			if (rec.TimedOutUntil != nil) != tt.wantUntil {
				t.Errorf("TimedOutUntil = %v, want set %v", rec.TimedOutUntil, tt.wantUntil)
			}
			if (rec.DeleteMessageSeconds != nil) != tt.wantPurge {
				t.Errorf("DeleteMessageSeconds = %v, want set %v", rec.DeleteMessageSeconds, tt.wantPurge)
			}
			if rec.GuildID != testGuildID || rec.UserID != "target" || rec.StaffID != "staff" {
				t.Errorf("ids = %s/%s/%s", rec.GuildID, rec.UserID, rec.StaffID)
			}
		})
	}
}

func TestServiceKickScenario(t *testing.T) {
	p := newFakePlatform()
	target := member("target", "member")
	p.members["target"] = target
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewService(p, store, pub)

	st := stateFor(memberTarget(target), ActionKick)
	st.DM = true
	st.Body = "spam en canales"

	out, err := svc.Confirm(context.Background(), st)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if !out.Complete() {
		t.Errorf("Confirm() = %+v, want complete", out)
	}
	if calls := p.Calls(); len(calls) != 2 || calls[0] != "dm" || calls[1] != "kick" {
		t.Errorf("calls = %v, want [dm kick]", calls)
	}
	if len(store.records) != 1 {
		t.Fatalf("records = %d, want 1", len(store.records))
	}
	rec := store.records[0]
	if rec.Action != "kick" || !rec.DMSuccess || !rec.ActionSuccess {
		t.Errorf("record = %+v, want kick with both flags", rec)
	}
	if len(pub.published) != 1 || pub.published[0].ID != out.Insert.ID {
		t.Errorf("published = %v, want the inserted record", pub.published)
	}
}

func TestServiceConfirmRechecks(t *testing.T) {
	p := newFakePlatform()
	store := &fakeStore{}
	svc := NewService(p, store, nil)

	// Staff no longer outranks the target.
	st := NewState(testGuild(), memberTarget(member("target", "mod")), member("staff", "lowmod"))
	st.Action = ActionBan

	if _, err := svc.Confirm(context.Background(), st); !errors.Is(err, ErrNotPermitted) {
		t.Errorf("Confirm() error = %v, want ErrNotPermitted", err)
	}

	st = stateFor(userTarget("gone"), ActionNote)
	if _, err := svc.Confirm(context.Background(), st); !errors.Is(err, ErrBodyRequired) {
		t.Errorf("Confirm() error = %v, want ErrBodyRequired", err)
	}

	if len(p.Calls()) != 0 || len(store.records) != 0 {
		t.Error("rejected confirmations must not act or record")
	}
}

func TestServiceRunWithSQLiteStore(t *testing.T) {
	store, err := actionlog.Open(filepath.Join(t.TempDir(), "actions.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	p := newFakePlatform()
	svc := NewService(p, store, nil)

	st := stateFor(userTarget("gone"), ActionBan)
	st.DeleteMessageSeconds = 604_800
	st.Body = "raid"

	out := svc.Run(context.Background(), st)
	if !out.Insert.Success {
		t.Fatalf("Run() insert = %+v", out.Insert)
	}

	rec, err := store.SelectByID(context.Background(), out.Insert.ID)
	if err != nil {
		t.Fatalf("SelectByID() error = %v", err)
	}
	if rec.Action != "ban" || rec.DeleteMessageSeconds == nil || *rec.DeleteMessageSeconds != 604_800 {
		t.Errorf("stored record = %+v", rec)
	}
	if rec.Timestamp != st.Timestamp.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", rec.Timestamp, st.Timestamp.UnixMilli())
	}
}
