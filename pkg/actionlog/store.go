// Package actionlog persists moderation actions, their attachments and the
// log messages posted for them in a relational store (sqlite through sqlx).
package actionlog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MaxAttachments is the number of images a single action may carry
const MaxAttachments = 4

var (
	// ErrNotFound is returned when an action id does not exist
	ErrNotFound = errors.New("action not found")
	// ErrTooManyAttachments is returned when an insert would exceed MaxAttachments
	ErrTooManyAttachments = fmt.Errorf("an action can hold at most %d attachments", MaxAttachments)
)

// Store is the action log database
type Store struct {
	db *sqlx.DB
}

// Patch lists the mutable fields of an action. Nil fields are left untouched.
type Patch struct {
	Revoked *bool
	Hidden  *bool
}

// Open connects to the sqlite database at dsn and applies migrations.
// Use ":memory:" for a throwaway database.
func Open(dsn string) (*Store, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// sqlite allows a single writer; a single connection also keeps ":memory:" alive.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

// Insert stores a new action and returns its id
func (s *Store) Insert(ctx context.Context, rec *models.ActionRecord) (int64, error) {
	query := `INSERT INTO actions (guild_id, user_id, action, body, dm, staff_id, timeout, timestamp,
			dm_success, action_success, delete_message_seconds, timed_out_until, revoked, hidden)
		VALUES (:guild_id, :user_id, :action, :body, :dm, :staff_id, :timeout, :timestamp,
			:dm_success, :action_success, :delete_message_seconds, :timed_out_until, :revoked, :hidden)`

	result, err := s.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return 0, fmt.Errorf("failed to insert action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	rec.ID = id
	return id, nil
}

// Update applies patch to the action with the given id
func (s *Store) Update(ctx context.Context, id int64, patch Patch) error {
	var sets []string
	var args []interface{}
	if patch.Revoked != nil {
		sets = append(sets, "revoked = ?")
		args = append(args, *patch.Revoked)
	}
	if patch.Hidden != nil {
		sets = append(sets, "hidden = ?")
		args = append(args, *patch.Hidden)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, "UPDATE actions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update action %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update action %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SelectByID returns a single action
func (s *Store) SelectByID(ctx context.Context, id int64) (*models.ActionRecord, error) {
	var rec models.ActionRecord
	err := s.db.GetContext(ctx, &rec, "SELECT * FROM actions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get action %d: %w", id, err)
	}
	return &rec, nil
}

// SelectByUser returns the actions taken against userID, newest first.
// An empty guildID searches every guild.
func (s *Store) SelectByUser(ctx context.Context, guildID, userID string) ([]models.ActionRecord, error) {
	query := "SELECT * FROM actions WHERE user_id = ?"
	args := []interface{}{userID}
	if guildID != "" {
		query += " AND guild_id = ?"
		args = append(args, guildID)
	}
	query += " ORDER BY id DESC"

	records := []models.ActionRecord{}
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get actions for user %s: %w", userID, err)
	}
	return records, nil
}

// InsertLogMessage records a posted log copy. It reports false when the
// message was already linked.
func (s *Store) InsertLogMessage(ctx context.Context, msg models.LogMessage) (bool, error) {
	result, err := s.db.NamedExecContext(ctx,
		`INSERT OR IGNORE INTO action_logs (message_id, channel_id, action_id) VALUES (:message_id, :channel_id, :action_id)`,
		msg)
	if err != nil {
		return false, fmt.Errorf("failed to link log message %s: %w", msg.MessageID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to link log message %s: %w", msg.MessageID, err)
	}
	return n > 0, nil
}

// SelectLogsByAction returns every posted copy of an action's log
func (s *Store) SelectLogsByAction(ctx context.Context, actionID int64) ([]models.LogMessage, error) {
	logs := []models.LogMessage{}
	err := s.db.SelectContext(ctx, &logs,
		"SELECT message_id, channel_id, action_id FROM action_logs WHERE action_id = ? ORDER BY channel_id", actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs for action %d: %w", actionID, err)
	}
	return logs, nil
}

// ClaimLogChannel reserves channelID for the action's log copy. Only one
// caller wins a claim; it reports false when the channel is already claimed.
func (s *Store) ClaimLogChannel(ctx context.Context, actionID int64, channelID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO log_claims (action_id, channel_id) VALUES (?, ?)", actionID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to claim %s for action %d: %w", channelID, actionID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to claim %s for action %d: %w", channelID, actionID, err)
	}
	return n > 0, nil
}

// ReleaseLogChannel drops a claim whose copy could not be posted
func (s *Store) ReleaseLogChannel(ctx context.Context, actionID int64, channelID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM log_claims WHERE action_id = ? AND channel_id = ?", actionID, channelID)
	if err != nil {
		return fmt.Errorf("failed to release %s for action %d: %w", channelID, actionID, err)
	}
	return nil
}

// DeleteLogMessage forgets a removed copy and its claim
func (s *Store) DeleteLogMessage(ctx context.Context, msg models.LogMessage) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM action_logs WHERE message_id = ? AND channel_id = ?", msg.MessageID, msg.ChannelID); err != nil {
		return fmt.Errorf("failed to delete log message %s: %w", msg.MessageID, err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM log_claims WHERE action_id = ? AND channel_id = ?", msg.ActionID, msg.ChannelID); err != nil {
		return fmt.Errorf("failed to release %s for action %d: %w", msg.ChannelID, msg.ActionID, err)
	}
	return tx.Commit()
}

// InsertAttachments links urls to an action, refusing to exceed MaxAttachments
func (s *Store) InsertAttachments(ctx context.Context, actionID int64, attachments []models.AttachmentRecord) ([]models.AttachmentRecord, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.GetContext(ctx, &exists, "SELECT COUNT(*) FROM actions WHERE id = ?", actionID); err != nil {
		return nil, fmt.Errorf("failed to check action %d: %w", actionID, err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	var current int
	if err := tx.GetContext(ctx, &current, "SELECT COUNT(*) FROM action_attachments WHERE action_id = ?", actionID); err != nil {
		return nil, fmt.Errorf("failed to count attachments: %w", err)
	}
	if current+len(attachments) > MaxAttachments {
		return nil, ErrTooManyAttachments
	}

	now := time.Now().UnixMilli()
	stored := make([]models.AttachmentRecord, 0, len(attachments))
	for _, a := range attachments {
		a.ActionID = actionID
		if a.CreatedAt == 0 {
			a.CreatedAt = now
		}
		result, err := tx.NamedExecContext(ctx,
			`INSERT INTO action_attachments (action_id, url, content_type, created_at) VALUES (:action_id, :url, :content_type, :created_at)`,
			a)
		if err != nil {
			return nil, fmt.Errorf("failed to insert attachment: %w", err)
		}
		if a.ID, err = result.LastInsertId(); err != nil {
			return nil, fmt.Errorf("failed to get last insert ID: %w", err)
		}
		stored = append(stored, a)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit attachments: %w", err)
	}
	return stored, nil
}

// SelectAttachments returns the images linked to an action
func (s *Store) SelectAttachments(ctx context.Context, actionID int64) ([]models.AttachmentRecord, error) {
	attachments := []models.AttachmentRecord{}
	err := s.db.SelectContext(ctx, &attachments,
		"SELECT * FROM action_attachments WHERE action_id = ? ORDER BY id", actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attachments for action %d: %w", actionID, err)
	}
	return attachments, nil
}
