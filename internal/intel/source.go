// Package intel answers the questions the recovery orchestrator asks before
// planning a restore: which backup is the last stable one, which version the
// codebase and that backup are at, and which migration scripts bridge the two.
package intel

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/recoveryd-dev/recoveryd/internal/config"
)

// Source is the intelligence collaborator consumed by the orchestrator.
// An empty MigrationPlan result means no migration path is known.
type Source interface {
	LastStableBackupPath(ctx context.Context) (string, error)
	CodebaseVersion(ctx context.Context) (string, error)
	BackupVersion(ctx context.Context, backupPath string) (string, error)
	MigrationPlan(ctx context.Context, fromVersion, toVersion string) ([]string, error)
}

// Built-in answers used when the configuration leaves the intel block empty
const (
	DefaultStableBackupPath = "/tmp/backups/2025-09-10_04-00-00_stable/"
	DefaultCodebaseVersion  = "v1.3.5"
	DefaultBackupVersion    = "v1.2.4"
)

// DefaultMigrations is the single known migration path of the built-in answers
var DefaultMigrations = []config.MigrationPath{
	{
		From: DefaultBackupVersion,
		To:   DefaultCodebaseVersion,
		Scripts: []string{
			"migrate_v1.2.4_to_v1.3.0.py",
			"migrate_v1.3.0_to_v1.3.5.py",
		},
	},
}

// Static answers every query from configuration. It stands in for the
// backup manager, code assistant and migration specialist services and
// never returns an error.
type Static struct {
	stableBackupPath string
	codebaseVersion  string
	backupVersion    string
	migrations       []config.MigrationPath
	logger           zerolog.Logger
}

// NewStatic creates a static source from the intel configuration block
func NewStatic(cfg config.IntelConfig, logger zerolog.Logger) *Static {
	s := &Static{
		stableBackupPath: cfg.StableBackupPath,
		codebaseVersion:  cfg.CodebaseVersion,
		backupVersion:    cfg.BackupVersion,
		migrations:       cfg.Migrations,
		logger:           logger.With().Str("component", "intel_static").Logger(),
	}
	if s.stableBackupPath == "" {
		s.stableBackupPath = DefaultStableBackupPath
	}
	if s.codebaseVersion == "" {
		s.codebaseVersion = DefaultCodebaseVersion
	}
	if s.backupVersion == "" {
		s.backupVersion = DefaultBackupVersion
	}
	if s.migrations == nil {
		s.migrations = DefaultMigrations
	}
	return s
}

func (s *Static) LastStableBackupPath(_ context.Context) (string, error) {
	s.logger.Info().Msg("Querying backup manager for the last stable backup")
	return s.stableBackupPath, nil
}

func (s *Static) CodebaseVersion(_ context.Context) (string, error) {
	s.logger.Info().Msg("Querying code assistant for the current codebase version")
	return s.codebaseVersion, nil
}

func (s *Static) BackupVersion(_ context.Context, backupPath string) (string, error) {
	s.logger.Info().Str("backup_path", backupPath).Msg("Reading version metadata from backup")
	return s.backupVersion, nil
}

// MigrationPlan returns a copy of the scripts for the exact from/to pair
func (s *Static) MigrationPlan(_ context.Context, fromVersion, toVersion string) ([]string, error) {
	s.logger.Info().
		Str("from_version", fromVersion).
		Str("to_version", toVersion).
		Msg("Querying migration specialist for a plan")

	for _, m := range s.migrations {
		if m.From == fromVersion && m.To == toVersion {
			return append([]string(nil), m.Scripts...), nil
		}
	}
	return nil, nil
}
