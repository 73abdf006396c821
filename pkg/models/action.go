package models

import "time"

// ActionRecord is one row of the moderation action log. Rows are never deleted;
// revocation and hiding only flip their flags.
type ActionRecord struct {
	ID                   int64  `db:"id" json:"id"`
	GuildID              string `db:"guild_id" json:"guildId"`
	UserID               string `db:"user_id" json:"userId"`
	Action               string `db:"action" json:"action"`
	Body                 string `db:"body" json:"body"`
	DM                   bool   `db:"dm" json:"dm"`
	StaffID              string `db:"staff_id" json:"staffId"`
	Timeout              *int64 `db:"timeout" json:"timeout,omitempty"`
	Timestamp            int64  `db:"timestamp" json:"timestamp"`
	DMSuccess            bool   `db:"dm_success" json:"dmSuccess"`
	ActionSuccess        bool   `db:"action_success" json:"actionSuccess"`
	DeleteMessageSeconds *int64 `db:"delete_message_seconds" json:"deleteMessageSeconds,omitempty"`
	TimedOutUntil        *int64 `db:"timed_out_until" json:"timedOutUntil,omitempty"`
	Revoked              bool   `db:"revoked" json:"revoked"`
	Hidden               bool   `db:"hidden" json:"hidden"`
}

// Time returns the moment the action was initiated
func (r *ActionRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// AttachmentRecord is an image linked to an action log entry
type AttachmentRecord struct {
	ID          int64  `db:"id" json:"id"`
	ActionID    int64  `db:"action_id" json:"actionId"`
	URL         string `db:"url" json:"url"`
	ContentType string `db:"content_type" json:"contentType"`
	CreatedAt   int64  `db:"created_at" json:"createdAt"`
}

// LogMessage links a posted log message to the action it describes
type LogMessage struct {
	MessageID string `db:"message_id" json:"messageId"`
	ChannelID string `db:"channel_id" json:"channelId"`
	ActionID  int64  `db:"action_id" json:"actionId"`
}
