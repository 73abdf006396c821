// Package moderation implements the mod-menu wizard: permission evaluation,
// state reconstruction from a rendered menu, action execution with DM
// notification, and the audit trail written for every confirmed attempt.
package moderation

import "fmt"

// Action is one of the closed set of moderation actions
type Action string

const (
	ActionKick      Action = "kick"
	ActionWarn      Action = "warn"
	ActionTimeout   Action = "timeout"
	ActionBan       Action = "ban"
	ActionNote      Action = "note"
	ActionRestrain  Action = "restrain"
	ActionUnban     Action = "unban"
	ActionUntimeout Action = "untimeout"
)

// Actions lists every action in menu order
var Actions = []Action{
	ActionRestrain,
	ActionTimeout,
	ActionUntimeout,
	ActionWarn,
	ActionNote,
	ActionKick,
	ActionBan,
	ActionUnban,
}

type actionInfo struct {
	label       string
	verb        string
	emoji       string
	color       int
	dmFirst     bool
	needsMember bool
}

// Every Action must have an entry here; action_test.go enforces it.
var actionInfos = map[Action]actionInfo{
	ActionKick:      {label: "Expulsar", verb: "expulsado", emoji: "👢", color: 0xE67E22, dmFirst: true, needsMember: true},
	ActionWarn:      {label: "Advertir", verb: "advertido", emoji: "⚠️", color: 0xF1C40F},
	ActionTimeout:   {label: "Aislar", verb: "aislado", emoji: "⏳", color: 0xE91E63, needsMember: true},
	ActionBan:       {label: "Banear", verb: "baneado", emoji: "🔨", color: 0xE74C3C, dmFirst: true},
	ActionNote:      {label: "Nota", verb: "anotado", emoji: "📝", color: 0x95A5A6},
	ActionRestrain:  {label: "Restringir", verb: "restringido", emoji: "⛓️", color: 0x9B59B6, needsMember: true},
	ActionUnban:     {label: "Desbanear", verb: "desbaneado", emoji: "🔓", color: 0x2ECC71},
	ActionUntimeout: {label: "Quitar aislamiento", verb: "liberado del aislamiento", emoji: "🕊️", color: 0x1ABC9C, needsMember: true},
}

// ParseAction validates s against the closed action set
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}

// Valid reports whether a belongs to the action set
func (a Action) Valid() bool {
	_, ok := actionInfos[a]
	return ok
}

// Label is the human name shown in menus
func (a Action) Label() string {
	if info, ok := actionInfos[a]; ok {
		return info.label
	}
	return string(a)
}

// Verb is the past participle used in notifications ("has sido <verb>")
func (a Action) Verb() string {
	if info, ok := actionInfos[a]; ok {
		return info.verb
	}
	return string(a)
}

// Emoji decorates menu options and log titles
func (a Action) Emoji() string {
	return actionInfos[a].emoji
}

// Color is the embed colour of log entries for a
func (a Action) Color() int {
	if info, ok := actionInfos[a]; ok {
		return info.color
	}
	return 0x5865F2
}

// DMFirst reports whether the notification must be sent before the action.
// After a ban or kick the bot may no longer share a server with the user.
func (a Action) DMFirst() bool {
	return actionInfos[a].dmFirst
}

// NeedsMember reports whether the target must currently be in the server
func (a Action) NeedsMember() bool {
	return actionInfos[a].needsMember
}

// String implements fmt.Stringer
func (a Action) String() string {
	return string(a)
}
