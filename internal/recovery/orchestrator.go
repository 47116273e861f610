package recovery

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/recoveryd-dev/recoveryd/internal/config"
	"github.com/recoveryd-dev/recoveryd/internal/intel"
	"github.com/recoveryd-dev/recoveryd/internal/metrics"
	"github.com/recoveryd-dev/recoveryd/internal/restore"
)

// Diagnoser proposes a quick fix for an error log
type Diagnoser interface {
	FindRepair(log, tenant string) (string, bool)
}

// Restorer performs a direct restore from one backup path
type Restorer interface {
	Run(ctx context.Context) bool
	Err() error
	Copied() int
}

// RestorerFactory builds a Restorer for the given backup source
type RestorerFactory func(backupPath string) Restorer

// Report describes one intelligent restore run
type Report struct {
	RunID         string    `json:"run_id"`
	Tenant        string    `json:"tenant,omitempty"`
	QuickFix      string    `json:"quick_fix,omitempty"`
	Facts         Facts     `json:"facts"`
	Plan          *Plan     `json:"plan,omitempty"`
	States        []State   `json:"states"`
	FilesRestored int       `json:"files_restored"`
	ExitCode      int       `json:"exit_code"`
	Error         string    `json:"error,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`

	Err error `json:"-"`
}

// State returns the state the run ended in
func (r *Report) State() State {
	if len(r.States) == 0 {
		return StateStart
	}
	return r.States[len(r.States)-1]
}

// Orchestrator sequences diagnosis, intelligence gathering, planning and
// execution. Runs are synchronous; callers serialise concurrent use.
type Orchestrator struct {
	diagnoser   Diagnoser
	intel       intel.Source
	newRestorer RestorerFactory
	migrator    Migrator
	tracker     *Tracker
	out         io.Writer
	logger      zerolog.Logger
}

// Option customises an Orchestrator
type Option func(*Orchestrator)

// WithOutput sets where the operator-facing narrative is written
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) { o.out = w }
}

// WithMigrator replaces the simulated migrator
func WithMigrator(m Migrator) Option {
	return func(o *Orchestrator) { o.migrator = m }
}

// WithTracker records each run's outcome in t
func WithTracker(t *Tracker) Option {
	return func(o *Orchestrator) { o.tracker = t }
}

// WithRestorerFactory replaces the restore engine used for direct restores
func WithRestorerFactory(f RestorerFactory) Option {
	return func(o *Orchestrator) { o.newRestorer = f }
}

// NewOrchestrator creates an orchestrator. Direct restores use a
// restore.Engine configured from settings unless WithRestorerFactory is given.
func NewOrchestrator(diagnoser Diagnoser, source intel.Source, settings config.RecoverySettings, logger zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		diagnoser: diagnoser,
		intel:     source,
		migrator:  NewSimulatedMigrator(logger),
		out:       io.Discard,
		logger:    logger.With().Str("component", "recovery_orchestrator").Logger(),
	}
	o.newRestorer = func(backupPath string) Restorer {
		return restore.NewEngine(backupPath, settings, logger)
	}

	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs an intelligent restore for the error log at errorLogPath and
// returns the process exit code.
func (o *Orchestrator) Execute(ctx context.Context, errorLogPath, tenant string) int {
	return o.Recover(ctx, errorLogPath, tenant).ExitCode
}

// Recover reads the error log at errorLogPath and runs an intelligent restore
func (o *Orchestrator) Recover(ctx context.Context, errorLogPath, tenant string) *Report {
	content, err := os.ReadFile(errorLogPath)
	if err != nil {
		r := o.begin(tenant)
		o.say("--- Starting Intelligent Restore Protocol ---")
		return o.fail(r, fmt.Errorf("%w %s: %v", ErrReadLog, errorLogPath, err))
	}
	return o.RecoverLog(ctx, string(content), tenant)
}

// RecoverLog runs an intelligent restore for log content already in memory
func (o *Orchestrator) RecoverLog(ctx context.Context, log, tenant string) *Report {
	r := o.begin(tenant)
	o.say("--- Starting Intelligent Restore Protocol ---")

	o.diagnose(r, log, tenant)

	if err := o.gatherIntelligence(ctx, r); err != nil {
		return o.fail(r, err)
	}

	plan, err := o.formulatePlan(ctx, r)
	if err != nil {
		return o.fail(r, err)
	}
	r.Plan = &plan

	if err := o.executePlan(ctx, r, plan); err != nil {
		return o.fail(r, err)
	}

	return o.finish(r)
}

func (o *Orchestrator) begin(tenant string) *Report {
	r := &Report{
		RunID:     ulid.Make().String(),
		Tenant:    tenant,
		StartedAt: time.Now().UTC(),
	}
	o.transition(r, StateStart)
	if o.tracker != nil {
		o.tracker.Begin(r.RunID, r.StartedAt)
	}
	return r
}

func (o *Orchestrator) diagnose(r *Report, log, tenant string) {
	o.transition(r, StateDiagnosing)

	script, found := o.diagnoser.FindRepair(log, tenant)
	if !found {
		o.say("Step 1: No quick fix found. Proceeding with restore.")
		return
	}

	r.QuickFix = script
	o.say("Step 1: Found a potential quick fix. Suggested script:\n%s", script)
	o.say("INFO: Quick fixes are advisory and are not applied automatically. Proceeding with restore.")
}

func (o *Orchestrator) gatherIntelligence(ctx context.Context, r *Report) error {
	o.transition(r, StateGatheringIntelligence)
	o.say("\nStep 2: Gathering intelligence...")

	path, err := o.intel.LastStableBackupPath(ctx)
	if err != nil {
		return fmt.Errorf("%w: could not determine the last stable backup: %v", ErrIntelligence, err)
	}
	r.Facts.StableBackupPath = path

	current, err := o.intel.CodebaseVersion(ctx)
	if err != nil {
		return fmt.Errorf("%w: could not determine the current codebase version: %v", ErrIntelligence, err)
	}
	r.Facts.CodebaseVersion = current

	version, err := o.intel.BackupVersion(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: could not determine the version of backup %s: %v", ErrIntelligence, path, err)
	}
	r.Facts.BackupVersion = version

	o.say("  - Last stable backup: %s (Version %s)", path, version)
	o.say("  - Current codebase version: %s", current)

	o.logger.Info().
		Str("run_id", r.RunID).
		Str("backup_path", path).
		Str("backup_version", version).
		Str("codebase_version", current).
		Msg("Gathered recovery intelligence")
	return nil
}

func (o *Orchestrator) formulatePlan(ctx context.Context, r *Report) (Plan, error) {
	o.transition(r, StatePlanning)
	o.say("\nStep 3: Formulating a plan...")

	from, to := r.Facts.BackupVersion, r.Facts.CodebaseVersion
	if from == to {
		o.say("  - Plan: Direct restore. No migration needed.")
		return directPlan(), nil
	}

	o.say("  - Plan: Schema-Drift detected. Migration required from %s to %s.", from, to)

	steps, err := o.intel.MigrationPlan(ctx, from, to)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: could not obtain a migration plan from %s to %s: %v", ErrIntelligence, from, to, err)
	}
	r.Facts.MigrationSteps = steps

	plan, err := migratedPlan(from, to, steps)
	if err != nil {
		o.say("  - CRITICAL FAILURE: No migration path found from %s to %s. Manual intervention required.", from, to)
		return Plan{}, err
	}

	o.say("  - Migration steps found: %v", plan.Steps)
	return plan, nil
}

func (o *Orchestrator) executePlan(ctx context.Context, r *Report, plan Plan) error {
	o.say("\nStep 4: Executing plan...")

	switch plan.Kind {
	case PlanDirect:
		o.transition(r, StateDirectExecuting)
		return o.executeDirect(ctx, r)
	case PlanMigrated:
		o.transition(r, StateMigrationExecuting)
		return o.executeMigration(ctx, plan)
	}
	return fmt.Errorf("unknown plan kind %q", plan.Kind)
}

func (o *Orchestrator) executeDirect(ctx context.Context, r *Report) error {
	o.say("  - Restoring backup %s", r.Facts.StableBackupPath)

	restorer := o.newRestorer(r.Facts.StableBackupPath)
	ok := restorer.Run(ctx)
	r.FilesRestored = restorer.Copied()
	if !ok {
		reason := "unknown error"
		if err := restorer.Err(); err != nil {
			reason = err.Error()
		}
		o.say("  - CRITICAL FAILURE: Restore failed: %s", reason)
		return fmt.Errorf("%w: %s", ErrRestoreFailed, reason)
	}

	o.say("  - Restored %d files.", r.FilesRestored)
	return nil
}

func (o *Orchestrator) executeMigration(ctx context.Context, plan Plan) error {
	o.say("  - SIMULATING: Executing restore to sandbox, applying migrations, and finalizing...")

	for i, step := range plan.Steps {
		o.say("    * Applying migration step %d/%d: %s", i+1, len(plan.Steps), step)
		if err := o.migrator.Apply(ctx, step); err != nil {
			o.say("  - CRITICAL FAILURE: Migration step %s failed: %v", step, err)
			return fmt.Errorf("%w: %s: %v", ErrMigrationFailed, step, err)
		}
	}
	return nil
}

func (o *Orchestrator) finish(r *Report) *Report {
	o.transition(r, StateFinished)
	r.ExitCode = ExitOK
	r.FinishedAt = time.Now().UTC()

	o.say("\n--- Intelligent Restore Protocol Finished ---")
	o.say("Run %s: %s, exit code %d", r.RunID, r.Plan.Kind, r.ExitCode)

	o.logger.Info().
		Str("run_id", r.RunID).
		Str("plan", string(r.Plan.Kind)).
		Int("files_restored", r.FilesRestored).
		Msg("Intelligent restore finished")

	outcome := "direct"
	if r.Plan.Kind == PlanMigrated {
		outcome = "migrated"
	}
	o.record(r, outcome)
	return r
}

func (o *Orchestrator) fail(r *Report, err error) *Report {
	o.transition(r, StateFailed)
	r.Err = err
	r.Error = err.Error()
	r.ExitCode = exitCode(err)
	r.FinishedAt = time.Now().UTC()

	o.say("\n--- Intelligent Restore Protocol Aborted ---")
	o.say("Run %s failed: %v (exit code %d)", r.RunID, err, r.ExitCode)

	o.logger.Error().
		Err(err).
		Str("run_id", r.RunID).
		Int("exit_code", r.ExitCode).
		Msg("Intelligent restore failed")

	outcome := "failed"
	if r.ExitCode == ExitNoMigrationPath {
		outcome = "no_migration_path"
	}
	o.record(r, outcome)
	return r
}

func (o *Orchestrator) record(r *Report, outcome string) {
	metrics.RecoveryRuns.WithLabelValues(outcome).Inc()
	metrics.RecoveryDuration.Observe(r.FinishedAt.Sub(r.StartedAt).Seconds())
	if o.tracker != nil {
		o.tracker.Finish(r)
	}
}

func (o *Orchestrator) transition(r *Report, s State) {
	r.States = append(r.States, s)
	o.logger.Debug().Str("run_id", r.RunID).Str("state", string(s)).Msg("State transition")
}

func (o *Orchestrator) say(format string, args ...any) {
	fmt.Fprintf(o.out, format+"\n", args...)
}
