package domain

// ProgressFunc reports download progress.
// Called once per metadata batch: (100, 250), (200, 250), (250, 250)
type ProgressFunc func(loaded, total int)

// SyncStage identifies the step a sync is currently in
type SyncStage int

const (
	StageIdle SyncStage = iota
	StageListing
	StageResolving
	StageInserting
	StageDone
)

func (s SyncStage) String() string {
	switch s {
	case StageListing:
		return "listing owned games"
	case StageResolving:
		return "resolving metadata"
	case StageInserting:
		return "updating catalog"
	case StageDone:
		return "done"
	default:
		return "idle"
	}
}

// SyncProgress reports the status of a single sync call.
// The last update of every call has InProgress == false.
type SyncProgress struct {
	UserID     string
	Stage      SyncStage
	InProgress bool
	Loaded     int
	Total      int
	Err        error
}

// SyncObserver receives progress updates during sync operations.
type SyncObserver interface {
	OnProgress(progress SyncProgress)
}

// ObserverFunc adapts a plain function to SyncObserver.
type ObserverFunc func(SyncProgress)

func (f ObserverFunc) OnProgress(p SyncProgress) { f(p) }

// NoOpObserver discards progress updates (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnProgress(SyncProgress) {}

// SyncResult summarizes what happened during a sync operation.
type SyncResult struct {
	UserID   string
	Owned    int // app ids returned by the owned-games listing
	Resolved int // apps with resolved metadata
	Inserted int // new catalog entries
	Skipped  int // titles already present
}
