package moderation

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
)

// Outcome is the result triple of one confirmed wizard
type Outcome struct {
	Action ActionStatus
	DM     DmStatus
	Insert InsertStatus
	Record *models.ActionRecord
}

// Complete reports whether every attempted step succeeded
func (o Outcome) Complete() bool {
	return o.Action.Success && o.DM.Success && o.Insert.Success
}

// Service ties the wizard to its collaborators
type Service struct {
	Platform  Platform
	Store     Store
	Publisher Publisher
}

// NewService creates a Service. publisher may be nil.
func NewService(p Platform, store Store, publisher Publisher) *Service {
	return &Service{Platform: p, Store: store, Publisher: publisher}
}

// Permissions evaluates the permission set for st
func (s *Service) Permissions(ctx context.Context, st *State) PermissionSet {
	return GetPermissions(ctx, s.Platform, st.Guild, st.Staff, st.Target)
}

// Run executes a validated state, stores the attempt and publishes it.
// It does not deduplicate: calling it twice performs and records the action twice.
func (s *Service) Run(ctx context.Context, st *State) Outcome {
	act, dm := Execute(ctx, s.Platform, st)
	if act.Err != nil {
		logger.Warn(fmt.Sprintf("%s sobre %s falló (%s): %v", st.Action, st.Target.ID(), act.Error, act.Err), "ModMenu")
	}
	if dm.Err != nil {
		logger.Debug(fmt.Sprintf("DM a %s falló (%s): %v", st.Target.ID(), dm.Error, dm.Err), "ModMenu")
	}

	insert, rec := TryInsert(ctx, s.Store, st, act, dm)
	out := Outcome{Action: act, DM: dm, Insert: insert, Record: rec}
	if !insert.Success {
		return out
	}

	if s.Publisher != nil {
		if err := s.Publisher.PublishCreate(ctx, rec); err != nil {
			logger.Error(fmt.Sprintf("No se pudo publicar el caso #%d: %v", rec.ID, err), "Fanout")
		}
	}

	logger.Info(fmt.Sprintf("Caso #%d: %s sobre %s por %s", rec.ID, rec.Action, rec.UserID, rec.StaffID), "ModMenu")
	return out
}

// Confirm re-checks permissions and validity at confirmation time, then runs st.
// A denied or invalid state returns an error and performs nothing.
func (s *Service) Confirm(ctx context.Context, st *State) (Outcome, error) {
	if err := st.Validate(); err != nil {
		return Outcome{}, err
	}
	if !s.Permissions(ctx, st).Allows(st.Action) {
		return Outcome{}, fmt.Errorf("%w: %s", ErrNotPermitted, st.Action)
	}
	return s.Run(ctx, st), nil
}
