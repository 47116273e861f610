package recovery

import (
	"errors"
	"fmt"
)

// Process exit codes returned by Execute
const (
	ExitOK              = 0
	ExitFailure         = 1 // unreadable log or intelligence failure
	ExitNoMigrationPath = 2
	ExitRestoreFailed   = 3
	ExitMigrationFailed = 4
)

var (
	ErrReadLog         = errors.New("cannot read error log")
	ErrIntelligence    = errors.New("intelligence query failed")
	ErrNoMigrationPath = errors.New("no migration path found")
	ErrRestoreFailed   = errors.New("restore failed")
	ErrMigrationFailed = errors.New("migration step failed")
)

// exitCode maps a run error to the process exit code
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrNoMigrationPath):
		return ExitNoMigrationPath
	case errors.Is(err, ErrRestoreFailed):
		return ExitRestoreFailed
	case errors.Is(err, ErrMigrationFailed):
		return ExitMigrationFailed
	default:
		return ExitFailure
	}
}

// Facts are the answers gathered from the intelligence source for one run
type Facts struct {
	StableBackupPath string   `json:"stable_backup_path"`
	CodebaseVersion  string   `json:"codebase_version"`
	BackupVersion    string   `json:"backup_version"`
	MigrationSteps   []string `json:"migration_steps,omitempty"`
}

// PlanKind distinguishes the two restore strategies
type PlanKind string

const (
	PlanDirect   PlanKind = "direct_restore"
	PlanMigrated PlanKind = "migrated_restore"
)

// Plan is derived from Facts on every run and never stored
type Plan struct {
	Kind  PlanKind `json:"kind"`
	Steps []string `json:"steps,omitempty"`
}

func directPlan() Plan {
	return Plan{Kind: PlanDirect}
}

// migratedPlan requires at least one step: differing versions with no
// scripts between them cannot be bridged.
func migratedPlan(from, to string, steps []string) (Plan, error) {
	if len(steps) == 0 {
		return Plan{}, fmt.Errorf("%w from %s to %s", ErrNoMigrationPath, from, to)
	}
	return Plan{Kind: PlanMigrated, Steps: append([]string(nil), steps...)}, nil
}
