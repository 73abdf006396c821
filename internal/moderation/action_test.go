package moderation

import (
	"context"
	"errors"
	"testing"
)

// Every action must be wired through metadata, execution and rendering.
func TestActionsExhaustive(t *testing.T) {
	if len(Actions) != len(actionInfos) {
		t.Fatalf("Actions has %d entries, metadata has %d", len(Actions), len(actionInfos))
	}

	seen := map[Action]bool{}
	for _, a := range Actions {
		if seen[a] {
			t.Errorf("%s listed twice", a)
		}
		seen[a] = true

		if !a.Valid() {
			t.Errorf("%s has no metadata", a)
		}
		if a.Label() == string(a) || a.Verb() == string(a) {
			t.Errorf("%s has no label or verb", a)
		}

		p := newFakePlatform()
		st := stateFor(memberTarget(member("target", "member")), a)
		st.Timeout = 60_000
		if got := TryAction(context.Background(), p, st); got.Error == ActionErrUnhandled {
			t.Errorf("TryAction(%s) is unhandled", a)
		}

		if _, err := DecodeMenu(renderMessage(t, st, newPermissionSet())); err != nil {
			t.Errorf("DecodeMenu(%s) error = %v", a, err)
		}
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range Actions {
		got, err := ParseAction(string(a))
		if err != nil || got != a {
			t.Errorf("ParseAction(%q) = %v, %v", a, got, err)
		}
	}

	for _, bad := range []string{"", "mute", "BAN"} {
		if _, err := ParseAction(bad); !errors.Is(err, ErrUnknownAction) {
			t.Errorf("ParseAction(%q) error = %v, want ErrUnknownAction", bad, err)
		}
	}
}

func TestDMFirstOnlyForBanAndKick(t *testing.T) {
	for _, a := range Actions {
		want := a == ActionBan || a == ActionKick
		if a.DMFirst() != want {
			t.Errorf("%s.DMFirst() = %v, want %v", a, a.DMFirst(), want)
		}
	}
}

func TestStateValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*State)
		wantErr error
	}{
		{"defaults", func(*State) {}, nil},
		{"note without body", func(s *State) { s.Action = ActionNote }, ErrBodyRequired},
		{"dm without body", func(s *State) { s.DM = true }, ErrBodyRequired},
		{"dm with body", func(s *State) { s.DM = true; s.Body = "x" }, nil},
		{"timeout without duration", func(s *State) { s.Action = ActionTimeout }, ErrTimeoutRequired},
		{"timeout with duration", func(s *State) { s.Action = ActionTimeout; s.Timeout = 1 }, nil},
		{"no staff", func(s *State) { s.Staff = nil }, ErrStaffRequired},
		{"bad action", func(s *State) { s.Action = "mute" }, ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := stateFor(userTarget("target"), ActionRestrain)
			tt.mutate(st)
			if err := st.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewStateDefaults(t *testing.T) {
	st := NewState(testGuild(), userTarget("target"), member("staff"))
	if st.Action != ActionRestrain || st.DM || st.Timeout != 0 || st.DeleteMessageSeconds != 0 {
		t.Errorf("NewState() = %+v, want restrain without dm", st)
	}
	if st.Timestamp.IsZero() {
		t.Error("NewState() should stamp the creation time")
	}
}
