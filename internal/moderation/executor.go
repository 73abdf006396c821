package moderation

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// ActionError tags why a platform action failed
type ActionError string

const (
	ActionErrNotInServer     ActionError = "not_in_server"
	ActionErrTimeoutDuration ActionError = "timeout_duration"
	ActionErrUnhandled       ActionError = "unhandled"
	ActionErrUnknown         ActionError = "unknown"
)

// Reason is the line shown to the moderator in the summary
func (e ActionError) Reason() string {
	switch e {
	case ActionErrNotInServer:
		return "El usuario no está en el servidor"
	case ActionErrTimeoutDuration:
		return "No se indicó la duración del aislamiento"
	case ActionErrUnhandled:
		return "Acción no soportada"
	default:
		return "Error desconocido al aplicar la acción"
	}
}

// ActionStatus is the outcome of TryAction
type ActionStatus struct {
	Success bool
	Error   ActionError
	// Err keeps the underlying platform error for logs, when there is one.
	Err error
}

// DmError tags why the notification was not delivered
type DmError string

const (
	DmErrNotInServer  DmError = "not_in_server"
	DmErrCannotSend   DmError = "cannot_send"
	DmErrUnknown      DmError = "unknown"
	DmErrActionFailed DmError = "action_failed"
)

// Reason is the line shown to the moderator in the summary
func (e DmError) Reason() string {
	switch e {
	case DmErrNotInServer:
		return "El usuario no está en el servidor"
	case DmErrCannotSend:
		return "El usuario tiene los mensajes directos cerrados"
	case DmErrActionFailed:
		return "No se envió porque la acción falló"
	default:
		return "Error desconocido al enviar el mensaje directo"
	}
}

// DmStatus is the outcome of TryDm
type DmStatus struct {
	Success bool
	Error   DmError
	// Message is the delivered DM, nil when none was sent.
	Message *discordgo.Message
	Err     error
}

func actionFailure(tag ActionError, err error) ActionStatus {
	return ActionStatus{Error: tag, Err: err}
}

// TryAction performs the platform side effect of st.Action. It never panics
// and never returns a raw platform error; failures come back tagged.
func TryAction(ctx context.Context, p Platform, st *State) (status ActionStatus) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("Panic al ejecutar %s: %v", st.Action, r), "ModMenu")
			status = actionFailure(ActionErrUnknown, fmt.Errorf("panic: %v", r))
		}
	}()

	guildID, userID := st.GuildID(), st.Target.ID()
	reason := AuditReason(st)

	switch st.Action {
	case ActionWarn, ActionNote:
		// Informational only.

	case ActionKick:
		if !st.Target.InServer() {
			return actionFailure(ActionErrNotInServer, nil)
		}
		if err := p.Kick(ctx, guildID, userID, reason); err != nil {
			return actionFailure(ActionErrUnknown, err)
		}

	case ActionTimeout, ActionRestrain:
		if st.Action == ActionTimeout && st.Timeout <= 0 {
			return actionFailure(ActionErrTimeoutDuration, nil)
		}
		if !st.Target.InServer() {
			return actionFailure(ActionErrNotInServer, nil)
		}
		until := time.Now().Add(st.TimeoutDuration())
		if err := p.Timeout(ctx, guildID, userID, &until, reason); err != nil {
			return actionFailure(ActionErrUnknown, err)
		}

	case ActionBan:
		if err := p.CreateBan(ctx, guildID, userID, reason, st.DeleteMessageSeconds); err != nil {
			return actionFailure(ActionErrUnknown, err)
		}

	case ActionUnban:
		if err := p.RemoveBan(ctx, guildID, userID, reason); err != nil {
			return actionFailure(ActionErrUnknown, err)
		}
		return ActionStatus{Success: true}

	case ActionUntimeout:
		if !st.Target.InServer() {
			return actionFailure(ActionErrNotInServer, nil)
		}
		if err := p.Timeout(ctx, guildID, userID, nil, reason); err != nil {
			return actionFailure(ActionErrUnknown, err)
		}
		return ActionStatus{Success: true}

	default:
		return actionFailure(ActionErrUnhandled, nil)
	}

	return ActionStatus{Success: true}
}

// TryDm notifies the target when st.DM is set
func TryDm(ctx context.Context, p Platform, st *State) (status DmStatus) {
	if !st.DM {
		return DmStatus{Success: true}
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("Panic al enviar DM: %v", r), "ModMenu")
			status = DmStatus{Error: DmErrUnknown, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if !st.Target.InServer() {
		return DmStatus{Error: DmErrNotInServer}
	}

	msg, err := p.SendDM(ctx, st.Target.ID(), NotificationMessage(st))
	if err != nil {
		if isCannotDM(err) {
			return DmStatus{Error: DmErrCannotSend, Err: err}
		}
		return DmStatus{Error: DmErrUnknown, Err: err}
	}
	return DmStatus{Success: true, Message: msg}
}

// Execute runs the action and the DM in the order the action needs. Ban and
// kick notify first; every other action notifies only after it succeeded.
func Execute(ctx context.Context, p Platform, st *State) (ActionStatus, DmStatus) {
	if st.Action.DMFirst() {
		dm := TryDm(ctx, p, st)
		return TryAction(ctx, p, st), dm
	}

	act := TryAction(ctx, p, st)
	if !act.Success {
		return act, DmStatus{Error: DmErrActionFailed}
	}
	return act, TryDm(ctx, p, st)
}

// maxAuditReason is the platform limit for X-Audit-Log-Reason
const maxAuditReason = 512

// AuditReason is the reason recorded in the guild audit log
func AuditReason(st *State) string {
	reason := "Sin razón"
	if st.Body != "" {
		reason = st.Body
	}
	if st.Staff != nil && st.Staff.User != nil {
		reason = st.Staff.User.Username + ": " + reason
	}
	if utf8.RuneCountInString(reason) > maxAuditReason {
		runes := []rune(reason)
		reason = string(runes[:maxAuditReason-1]) + "…"
	}
	return reason
}
