package moderation

import (
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
)

// RestrainDuration is the fixed timeout applied by restrain, one minute under
// the platform's 28 day ceiling.
const RestrainDuration = 28*24*time.Hour - time.Minute

// MaxBodyLength bounds the reason/note text
const MaxBodyLength = 1000

var (
	// ErrInvalidMenu means the message is not a wizard this bot rendered
	ErrInvalidMenu = errors.New("invalid menu")
	// ErrUnknownAction means an action value outside the closed set
	ErrUnknownAction = errors.New("unknown action")
	// ErrStaffRequired means the initiator is not a guild member
	ErrStaffRequired = errors.New("staff must be a guild member")
	// ErrBodyRequired means the action or the DM needs a reason
	ErrBodyRequired = errors.New("body required")
	// ErrTimeoutRequired means a timeout action without a duration
	ErrTimeoutRequired = errors.New("timeout duration required")
	// ErrNotPermitted means the permission set denies the action
	ErrNotPermitted = errors.New("action not permitted")
)

// Target is the moderated user, resolved to a member when they are in the server
type Target struct {
	User   *discordgo.User
	Member *discordgo.Member
}

// ID returns the target user id
func (t Target) ID() string {
	if t.User != nil {
		return t.User.ID
	}
	if t.Member != nil && t.Member.User != nil {
		return t.Member.User.ID
	}
	return ""
}

// InServer reports whether the target resolved to a guild member
func (t Target) InServer() bool {
	return t.Member != nil
}

// State is the in-memory wizard state. It is rebuilt from the rendered menu on
// every interaction and consumed once on confirmation.
type State struct {
	Guild  *discordgo.Guild
	Target Target
	Action Action
	Body   string
	DM     bool
	Staff  *discordgo.Member
	// Timeout in milliseconds, only meaningful for ActionTimeout.
	Timeout int64
	// DeleteMessageSeconds is the purge window, only meaningful for ActionBan.
	DeleteMessageSeconds int
	Timestamp            time.Time
	// TimedOutUntil is the expiry of the target's active timeout, if any.
	TimedOutUntil *time.Time
}

// NewState returns a state with the wizard defaults
func NewState(guild *discordgo.Guild, target Target, staff *discordgo.Member) *State {
	st := &State{
		Guild:     guild,
		Target:    target,
		Action:    ActionRestrain,
		Staff:     staff,
		Timestamp: time.Now(),
	}
	st.captureTimeout()
	return st
}

func (s *State) captureTimeout() {
	if s.Target.Member == nil || s.Target.Member.CommunicationDisabledUntil == nil {
		return
	}
	until := *s.Target.Member.CommunicationDisabledUntil
	if until.After(time.Now()) {
		s.TimedOutUntil = &until
	}
}

// GuildID returns the id of the guild the state belongs to
func (s *State) GuildID() string {
	if s.Guild == nil {
		return ""
	}
	return s.Guild.ID
}

// StaffID returns the acting moderator's id
func (s *State) StaffID() string {
	if s.Staff == nil || s.Staff.User == nil {
		return ""
	}
	return s.Staff.User.ID
}

// BodyRequired reports whether the current action or DM flag needs a body
func (s *State) BodyRequired() bool {
	return s.DM || s.Action == ActionNote
}

// Validate checks the fields the current action depends on
func (s *State) Validate() error {
	if s.Staff == nil {
		return ErrStaffRequired
	}
	if !s.Action.Valid() {
		return ErrUnknownAction
	}
	if s.BodyRequired() && s.Body == "" {
		return ErrBodyRequired
	}
	if s.Action == ActionTimeout && s.Timeout <= 0 {
		return ErrTimeoutRequired
	}
	return nil
}

// Valid is Validate() == nil
func (s *State) Valid() bool {
	return s.Validate() == nil
}

// TimeoutDuration returns the duration applied by timeout or restrain
func (s *State) TimeoutDuration() time.Duration {
	switch s.Action {
	case ActionRestrain:
		return RestrainDuration
	case ActionTimeout:
		return time.Duration(s.Timeout) * time.Millisecond
	}
	return 0
}
