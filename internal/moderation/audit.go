package moderation

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/models"
)

// Store persists action records. *actionlog.Store satisfies it.
type Store interface {
	Insert(ctx context.Context, rec *models.ActionRecord) (int64, error)
}

// Publisher fans a freshly stored record out to every log consumer
type Publisher interface {
	PublishCreate(ctx context.Context, rec *models.ActionRecord) error
}

// InsertStatus is the outcome of TryInsert
type InsertStatus struct {
	Success bool
	ID      int64
	Err     error
}

// NewRecord flattens a confirmed state and its outcomes into a log row
func NewRecord(st *State, act ActionStatus, dm DmStatus) *models.ActionRecord {
	rec := &models.ActionRecord{
		GuildID:       st.GuildID(),
		UserID:        st.Target.ID(),
		Action:        string(st.Action),
		Body:          st.Body,
		DM:            st.DM,
		StaffID:       st.StaffID(),
		Timestamp:     st.Timestamp.UnixMilli(),
		DMSuccess:     dm.Success,
		ActionSuccess: act.Success,
	}

	if st.Timeout > 0 && st.Action == ActionTimeout {
		timeout := st.Timeout
		rec.Timeout = &timeout
	}
	if st.Action == ActionRestrain {
		timeout := RestrainDuration.Milliseconds()
		rec.Timeout = &timeout
	}
	if st.Action == ActionBan {
		seconds := int64(st.DeleteMessageSeconds)
		rec.DeleteMessageSeconds = &seconds
	}
	if st.Action == ActionUntimeout && st.TimedOutUntil != nil {
		until := st.TimedOutUntil.UnixMilli()
		rec.TimedOutUntil = &until
	}

	return rec
}

// TryInsert writes exactly one record for the attempt, whatever the outcomes
// were. Store failures are reported and returned as a failed status.
func TryInsert(ctx context.Context, store Store, st *State, act ActionStatus, dm DmStatus) (InsertStatus, *models.ActionRecord) {
	rec := NewRecord(st, act, dm)

	id, err := store.Insert(ctx, rec)
	if err != nil {
		err = fmt.Errorf("insert %s on %s: %w", rec.Action, rec.UserID, err)
		errors.Capture("ActionLog", err)
		return InsertStatus{Err: err}, rec
	}

	rec.ID = id
	return InsertStatus{Success: true, ID: id}, rec
}
