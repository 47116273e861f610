package recovery

import (
	"sync"
	"time"
)

const idleDetails = "No restoration has been run yet."

// Snapshot is the externally visible status of the most recent run
type Snapshot struct {
	Status   RunStatus  `json:"status"`
	LastRun  *time.Time `json:"last_run"`
	Details  string     `json:"details"`
	RunID    string     `json:"run_id,omitempty"`
	Plan     PlanKind   `json:"plan,omitempty"`
	ExitCode *int       `json:"exit_code,omitempty"`
}

// Tracker remembers the most recent run. It is safe for concurrent use so
// the HTTP server can read it while a run is recorded.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a tracker in the idle state
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Status: RunStatusIdle, Details: idleDetails}}
}

// Begin marks a run as in progress
func (t *Tracker) Begin(runID string, started time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap = Snapshot{
		Status:  RunStatusRunning,
		LastRun: &started,
		Details: "Intelligent restore in progress.",
		RunID:   runID,
	}
}

// Finish records the outcome of a run
func (t *Tracker) Finish(r *Report) {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := RunStatusSucceeded
	details := "Intelligent restore finished."
	if r.Err != nil {
		status = RunStatusFailed
		details = r.Err.Error()
	}

	code := r.ExitCode
	started := r.StartedAt
	t.snap = Snapshot{
		Status:   status,
		LastRun:  &started,
		Details:  details,
		RunID:    r.RunID,
		ExitCode: &code,
	}
	if r.Plan != nil {
		t.snap.Plan = r.Plan.Kind
	}
}

// Snapshot returns a copy of the current status
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}
