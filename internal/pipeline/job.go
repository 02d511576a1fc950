// Package pipeline owns job orchestration: the per-video state machine, the
// memory-budgeted admission queue, the bounded worker pool, and retry policy.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/BigAddict/VideoEditor/internal/planner"
	"github.com/BigAddict/VideoEditor/internal/probe"
)

// State is a job's position in the processing pipeline.
type State int

const (
	StateQueued State = iota
	StateProbing
	StatePlanning
	StateRendering
	StateJoining
	StateValidating
	StateSucceeded
	StateFailed
)

// String returns the lowercase state name for logs and reports.
func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateProbing:
		return "probing"
	case StatePlanning:
		return "planning"
	case StateRendering:
		return "rendering"
	case StateJoining:
		return "joining"
	case StateValidating:
		return "validating"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether the state ends a job's lifecycle.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// FailureReason classifies why a job failed and drives the retry decision.
type FailureReason string

const (
	FailureNone            FailureReason = ""
	FailureUnreadable      FailureReason = "unreadable"       // Not a valid video. Never retried.
	FailureTooShort        FailureReason = "too_short"        // Below segmentation threshold. Never retried.
	FailureInvalidGeometry FailureReason = "invalid_geometry" // Overlay cannot fit the frame. Never retried.
	FailureAssetMissing    FailureReason = "asset_missing"    // Logo unavailable at render time. Never retried.
	FailureEncodeFailed    FailureReason = "encode_failed"    // Encoder non-zero exit. Retried.
	FailureTransientIO     FailureReason = "transient_io"     // Resource condition that may clear. Retried.
	FailureCorrupt         FailureReason = "corrupt"          // Output failed validation. Retried.
	FailureCancelled       FailureReason = "cancelled"        // Shutdown. Never retried, not charged.
)

// Recoverable reports whether a failure may clear on a later attempt.
// Deterministic rejections and cancellation are terminal immediately.
func (r FailureReason) Recoverable() bool {
	return r == FailureEncodeFailed || r == FailureTransientIO || r == FailureCorrupt
}

// Job tracks one video through the pipeline. A job owns its temp working
// directory exclusively until it reaches a terminal state.
type Job struct {
	ID         string
	SourcePath string

	Video    *probe.VideoDescriptor // Set after probing.
	Segments planner.SegmentPlan    // Set after planning.

	State    State
	Attempts int // Attempts started, including the current one.
	Reason   FailureReason
	LastErr  string

	WorkDir    string // Per-attempt temp subtree.
	JoinedPath string // Joined output inside WorkDir, set before finalize.

	EnqueuedAt time.Time
	FinishedAt time.Time

	reserved int64 // Bytes currently committed against the memory budget.
}

// NewJob creates a queued job for a source path.
func NewJob(sourcePath string) *Job {
	return &Job{
		ID:         uuid.NewString(),
		SourcePath: sourcePath,
		State:      StateQueued,
		EnqueuedAt: time.Now(),
	}
}

// fail records a terminal-candidate failure on the job. The scheduler
// decides afterwards whether it is requeued or terminal.
func (j *Job) fail(reason FailureReason, err error) {
	j.State = StateFailed
	j.Reason = reason
	if err != nil {
		j.LastErr = err.Error()
	}
}
