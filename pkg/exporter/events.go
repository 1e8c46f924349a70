package exporter

import "time"

// Stage is a step of the export state machine
type Stage string

const (
	StageIdle          Stage = "idle"
	StageAuthenticated Stage = "authenticated"
	StageListed        Stage = "listed"
	StageFiltering     Stage = "filtering"
	StageDownloading   Stage = "downloading"
	StageFinalizing    Stage = "finalizing"
	StageDone          Stage = "done"
	StageCancelled     Stage = "cancelled"
)

// EventKind tells what an Event reports
type EventKind string

const (
	EventStage       EventKind = "stage"
	EventPostStarted EventKind = "post_started"
	EventPostDone    EventKind = "post_done"
	EventPostFailed  EventKind = "post_failed"
	EventWarning     EventKind = "warning"
	EventFinished    EventKind = "finished"
)

// Event is a progress notification from a run
type Event struct {
	Kind    EventKind
	Stage   Stage
	Message string

	PostID string
	Owner  string
	Media  string
	Index  int
	Total  int

	Err error

	// Summary is set on EventFinished
	Summary *Summary
}

// Summary reports the outcome of a run
type Summary struct {
	RunID    string
	Username string

	// Found is the number of candidate posts listed
	Found      int
	Skipped    int
	Successful int
	Failed     int
	// Total is the number of posts attempted
	Total int

	// UpToDate is set when posts were listed but all were already downloaded
	UpToDate bool
	NoPosts  bool

	Cancelled bool

	LedgerErr   error
	ArchivePath string
	ArchiveSize int64
	ArchiveErr  error

	Duration time.Duration
}
