package components

import (
	"fmt"

	"github.com/mmcdole/backlog/internal/domain"
)

// SyncStatus represents the state of the library import
type SyncStatus int

const (
	StatusIdle SyncStatus = iota
	StatusSyncing
	StatusSynced
	StatusError
)

// SyncState tracks progress of a single sync call
type SyncState struct {
	Status SyncStatus
	Stage  domain.SyncStage
	Loaded int   // Items processed in the current stage
	Total  int   // Items expected in the current stage
	Error  error // Error if any
}

// Apply folds a progress update into the state
func (s SyncState) Apply(p domain.SyncProgress) SyncState {
	s.Stage = p.Stage
	s.Loaded = p.Loaded
	s.Total = p.Total
	switch {
	case p.InProgress:
		s.Status = StatusSyncing
		s.Error = nil
	case p.Err != nil:
		s.Status = StatusError
		s.Error = p.Err
	default:
		s.Status = StatusSynced
		s.Error = nil
	}
	return s
}

// Active reports whether a sync is running
func (s SyncState) Active() bool {
	return s.Status == StatusSyncing
}

// Label returns a one-line description for the footer
func (s SyncState) Label() string {
	switch s.Status {
	case StatusSyncing:
		if s.Total > 0 {
			return fmt.Sprintf("Syncing · %s %d/%d", s.Stage, s.Loaded, s.Total)
		}
		return fmt.Sprintf("Syncing · %s...", s.Stage)
	case StatusSynced:
		return fmt.Sprintf("Sync complete · %d games checked", s.Loaded)
	case StatusError:
		return "Sync failed: " + s.Error.Error()
	default:
		return ""
	}
}
