package state

import (
	"errors"
	"time"
)

// RunKind distinguishes what a run record tracks.
type RunKind string

const (
	RunKindInstall RunKind = "install"
	RunKindStart   RunKind = "start"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusStopped   RunStatus = "stopped"
)

// ErrNotStarted reports a stop request for a project with no running
// start record.
var ErrNotStarted = errors.New("project is not started")

// Run is one recorded install or start of a project.
type Run struct {
	ID          string     `json:"id"`
	Project     string     `json:"project"`
	Version     string     `json:"version"`
	Kind        RunKind    `json:"kind"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
