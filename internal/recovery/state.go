package recovery

// State is a step of the intelligent restore state machine
type State string

const (
	StateStart                 State = "start"
	StateDiagnosing            State = "diagnosing"
	StateGatheringIntelligence State = "gathering_intelligence"
	StatePlanning              State = "planning"
	StateDirectExecuting       State = "direct_executing"
	StateMigrationExecuting    State = "migration_executing"
	StateFinished              State = "finished"
	StateFailed                State = "failed"
)

// IsTerminal returns true if no further transitions follow this state
func (s State) IsTerminal() bool {
	return s == StateFinished || s == StateFailed
}

// RunStatus summarises the most recent run for status reporting
type RunStatus string

const (
	// RunStatusIdle indicates no run has happened yet
	RunStatusIdle RunStatus = "idle"

	// RunStatusRunning indicates a run is in progress
	RunStatusRunning RunStatus = "running"

	// RunStatusSucceeded indicates the last run finished with exit code 0
	RunStatusSucceeded RunStatus = "succeeded"

	// RunStatusFailed indicates the last run ended in the failed state
	RunStatusFailed RunStatus = "failed"
)
