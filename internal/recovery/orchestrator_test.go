package recovery

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recoveryd-dev/recoveryd/internal/config"
	"github.com/recoveryd-dev/recoveryd/internal/diagnose"
	"github.com/recoveryd-dev/recoveryd/internal/intel"
)

type fakeSource struct {
	path          string
	current       string
	backup        string
	steps         []string
	err           error
	planCalls     int
	backupQueried string
}

func (f *fakeSource) LastStableBackupPath(context.Context) (string, error) {
	return f.path, f.err
}

func (f *fakeSource) CodebaseVersion(context.Context) (string, error) {
	return f.current, nil
}

func (f *fakeSource) BackupVersion(_ context.Context, path string) (string, error) {
	f.backupQueried = path
	return f.backup, nil
}

func (f *fakeSource) MigrationPlan(context.Context, string, string) ([]string, error) {
	f.planCalls++
	return f.steps, nil
}

type fakeRestorer struct {
	ok     bool
	err    error
	copied int
	runs   int
}

func (f *fakeRestorer) Run(context.Context) bool {
	f.runs++
	return f.ok
}

func (f *fakeRestorer) Err() error  { return f.err }
func (f *fakeRestorer) Copied() int { return f.copied }

type recordingMigrator struct {
	applied []string
	failOn  string
}

func (m *recordingMigrator) Apply(_ context.Context, step string) error {
	if step == m.failOn {
		return errors.New("script exited 1")
	}
	m.applied = append(m.applied, step)
	return nil
}

type harness struct {
	orch       *Orchestrator
	source     *fakeSource
	restorer   *fakeRestorer
	migrator   *recordingMigrator
	tracker    *Tracker
	out        *bytes.Buffer
	factoryArg string
}

func newHarness(t *testing.T, source *fakeSource) *harness {
	t.Helper()
	h := &harness{
		source:   source,
		restorer: &fakeRestorer{ok: true, copied: 2},
		migrator: &recordingMigrator{},
		tracker:  NewTracker(),
		out:      &bytes.Buffer{},
	}
	h.orch = NewOrchestrator(
		diagnose.NewDefaultRegistry(zerolog.Nop()),
		source,
		config.RecoverySettings{},
		zerolog.Nop(),
		WithOutput(h.out),
		WithMigrator(h.migrator),
		WithTracker(h.tracker),
		WithRestorerFactory(func(backupPath string) Restorer {
			h.factoryArg = backupPath
			return h.restorer
		}),
	)
	return h
}

func TestRecoverLog_DirectRestore(t *testing.T) {
	h := newHarness(t, &fakeSource{path: "/backups/stable", current: "1.3.5", backup: "1.3.5"})

	r := h.orch.RecoverLog(context.Background(), "all good", "")

	assert.Equal(t, ExitOK, r.ExitCode)
	assert.NoError(t, r.Err)
	assert.Equal(t, StateFinished, r.State())
	assert.Equal(t, []State{
		StateStart, StateDiagnosing, StateGatheringIntelligence,
		StatePlanning, StateDirectExecuting, StateFinished,
	}, r.States)
	require.NotNil(t, r.Plan)
	assert.Equal(t, PlanDirect, r.Plan.Kind)

	assert.Zero(t, h.source.planCalls, "equal versions must not query a migration plan")
	assert.Equal(t, "/backups/stable", h.source.backupQueried)
	assert.Equal(t, "/backups/stable", h.factoryArg)
	assert.Equal(t, 1, h.restorer.runs)
	assert.Equal(t, 2, r.FilesRestored)
	assert.Empty(t, h.migrator.applied)

	assert.Contains(t, h.out.String(), "--- Starting Intelligent Restore Protocol ---")
	assert.Contains(t, h.out.String(), "Step 1: No quick fix found.")
	assert.Contains(t, h.out.String(), "Plan: Direct restore.")
	assert.Contains(t, h.out.String(), "--- Intelligent Restore Protocol Finished ---")
}

func TestRecoverLog_MigratedRestore(t *testing.T) {
	steps := []string{"m1.py", "m2.py", "m3.py"}
	h := newHarness(t, &fakeSource{path: "/b", current: "2.0", backup: "1.0", steps: steps})

	r := h.orch.RecoverLog(context.Background(), "", "")

	assert.Equal(t, ExitOK, r.ExitCode)
	assert.Equal(t, StateMigrationExecuting, r.States[len(r.States)-2])
	require.NotNil(t, r.Plan)
	assert.Equal(t, PlanMigrated, r.Plan.Kind)
	assert.Equal(t, steps, r.Plan.Steps)
	assert.Equal(t, steps, h.migrator.applied)
	assert.Equal(t, 1, h.source.planCalls)
	assert.Zero(t, h.restorer.runs)
}

func TestRecoverLog_NoMigrationPath(t *testing.T) {
	h := newHarness(t, &fakeSource{path: "/b", current: "2.0", backup: "1.0"})

	r := h.orch.RecoverLog(context.Background(), "", "")

	assert.Equal(t, ExitNoMigrationPath, r.ExitCode)
	assert.NotZero(t, r.ExitCode)
	assert.ErrorIs(t, r.Err, ErrNoMigrationPath)
	assert.Equal(t, StateFailed, r.State())
	assert.Nil(t, r.Plan)
	assert.Zero(t, h.restorer.runs, "no restore may be attempted without a migration path")
	assert.Empty(t, h.migrator.applied)
	assert.Contains(t, h.out.String(), "CRITICAL FAILURE: No migration path found from 1.0 to 2.0")
}

func TestRecoverLog_RestoreFailed(t *testing.T) {
	h := newHarness(t, &fakeSource{path: "/b", current: "1", backup: "1"})
	h.restorer.ok = false
	h.restorer.err = errors.New("disk full")
	h.restorer.copied = 1

	r := h.orch.RecoverLog(context.Background(), "", "")

	assert.Equal(t, ExitRestoreFailed, r.ExitCode)
	assert.ErrorIs(t, r.Err, ErrRestoreFailed)
	assert.Contains(t, r.Error, "disk full")
	assert.Equal(t, 1, r.FilesRestored)
	assert.Equal(t, StateFailed, r.State())
}

func TestRecoverLog_MigrationFailedStopsAtFirstError(t *testing.T) {
	h := newHarness(t, &fakeSource{path: "/b", current: "2", backup: "1", steps: []string{"a", "b", "c"}})
	h.migrator.failOn = "b"

	r := h.orch.RecoverLog(context.Background(), "", "")

	assert.Equal(t, ExitMigrationFailed, r.ExitCode)
	assert.ErrorIs(t, r.Err, ErrMigrationFailed)
	assert.Equal(t, []string{"a"}, h.migrator.applied)
}

func TestRecoverLog_IntelligenceError(t *testing.T) {
	h := newHarness(t, &fakeSource{err: errors.New("backup manager unreachable")})

	r := h.orch.RecoverLog(context.Background(), "", "")

	assert.Equal(t, ExitFailure, r.ExitCode)
	assert.ErrorIs(t, r.Err, ErrIntelligence)
	assert.Equal(t, StateFailed, r.State())
}

func TestRecoverLog_QuickFixIsAdvisory(t *testing.T) {
	h := newHarness(t, &fakeSource{path: "/b", current: "1", backup: "1"})

	r := h.orch.RecoverLog(context.Background(), "Permission denied: '/var/www/html/index.html'", "acme")

	assert.Equal(t, ExitOK, r.ExitCode)
	assert.Contains(t, r.QuickFix, "chown -R acme_user:acme_group /var/www/html/index.html")
	assert.Equal(t, 1, h.restorer.runs, "restore proceeds after a quick fix is suggested")
	assert.Contains(t, h.out.String(), "Step 1: Found a potential quick fix.")
}

func TestRecover_ReadsLogFile(t *testing.T) {
	h := newHarness(t, &fakeSource{path: "/b", current: "1", backup: "1"})
	logPath := filepath.Join(t.TempDir(), "error.log")
	require.NoError(t, os.WriteFile(logPath, []byte("No such file or directory: '/srv/app/data/x.db'"), 0o644))

	r := h.orch.Recover(context.Background(), logPath, "")

	assert.Equal(t, ExitOK, r.ExitCode)
	assert.Contains(t, r.QuickFix, "mkdir -p /srv/app/data")
}

func TestRecover_UnreadableLog(t *testing.T) {
	h := newHarness(t, &fakeSource{path: "/b", current: "1", backup: "1"})

	code := h.orch.Execute(context.Background(), filepath.Join(t.TempDir(), "missing.log"), "")

	assert.Equal(t, ExitFailure, code)
	assert.Zero(t, h.restorer.runs)
	snap := h.tracker.Snapshot()
	assert.Equal(t, RunStatusFailed, snap.Status)
	assert.Contains(t, snap.Details, ErrReadLog.Error())
}

func TestRecoverLog_UpdatesTracker(t *testing.T) {
	h := newHarness(t, &fakeSource{path: "/b", current: "1", backup: "1"})

	r := h.orch.RecoverLog(context.Background(), "", "")

	snap := h.tracker.Snapshot()
	assert.Equal(t, RunStatusSucceeded, snap.Status)
	assert.Equal(t, r.RunID, snap.RunID)
	assert.Equal(t, PlanDirect, snap.Plan)
	require.NotNil(t, snap.ExitCode)
	assert.Equal(t, ExitOK, *snap.ExitCode)
}

func TestRecoverLog_DefaultsWithStaticSource(t *testing.T) {
	var out bytes.Buffer
	source := intel.NewStatic(config.IntelConfig{}, zerolog.Nop())
	orch := NewOrchestrator(
		diagnose.NewDefaultRegistry(zerolog.Nop()),
		source,
		config.RecoverySettings{TargetDir: t.TempDir(), BackupFormats: map[string]string{"db": "*.sql"}},
		zerolog.Nop(),
		WithOutput(&out),
	)

	r := orch.RecoverLog(context.Background(), "", "")

	assert.Equal(t, ExitOK, r.ExitCode)
	require.NotNil(t, r.Plan)
	assert.Equal(t, PlanMigrated, r.Plan.Kind)
	assert.Len(t, r.Plan.Steps, 2)
	assert.Contains(t, out.String(), "Schema-Drift detected. Migration required from v1.2.4 to v1.3.5.")
}

func TestRunIDsAreUnique(t *testing.T) {
	h := newHarness(t, &fakeSource{path: "/b", current: "1", backup: "1"})

	a := h.orch.RecoverLog(context.Background(), "", "")
	b := h.orch.RecoverLog(context.Background(), "", "")

	assert.NotEmpty(t, a.RunID)
	assert.NotEqual(t, a.RunID, b.RunID)
}
