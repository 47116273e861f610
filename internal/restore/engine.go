package restore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/recoveryd-dev/recoveryd/internal/config"
	"github.com/recoveryd-dev/recoveryd/internal/metrics"
)

var (
	// ErrSourceMissing indicates the backup source is not a directory
	ErrSourceMissing = errors.New("backup source directory does not exist")

	// ErrTargetNotDir indicates the target path exists but is not a directory
	ErrTargetNotDir = errors.New("target path is not a directory")

	// ErrSameFile indicates a copy would overwrite its own source
	ErrSameFile = errors.New("source and destination are the same file")
)

// Engine copies backup files matching the configured patterns from a backup
// source directory into the target directory. An Engine serves one restore
// invocation and is discarded afterwards.
type Engine struct {
	backupPath string
	targetDir  string
	patterns   map[string]string
	encryptKey string

	copyFile func(src, dst string) error
	logger   zerolog.Logger

	copied int
	err    error
}

// NewEngine creates an engine restoring from backupPath using the recovery settings
func NewEngine(backupPath string, settings config.RecoverySettings, logger zerolog.Logger) *Engine {
	return &Engine{
		backupPath: backupPath,
		targetDir:  settings.TargetDir,
		patterns:   settings.BackupFormats,
		encryptKey: settings.EncryptKey,
		copyFile:   copyFile,
		logger:     logger.With().Str("component", "restoration_engine").Logger(),
	}
}

// BackupPath returns the backup source directory
func (e *Engine) BackupPath() string { return e.backupPath }

// TargetDir returns the directory files are restored into
func (e *Engine) TargetDir() string { return e.targetDir }

// Copied returns how many files the last Run copied
func (e *Engine) Copied() int { return e.copied }

// Err returns the reason the last Run returned false, or nil
func (e *Engine) Err() error { return e.err }

// Run performs the restore. It returns false when the source or target is
// unusable or a copy fails; copies completed before a failure are kept.
// Finding no matching files is a successful no-op.
func (e *Engine) Run(ctx context.Context) bool {
	e.copied = 0
	e.err = nil

	e.logger.Info().
		Str("backup_path", e.backupPath).
		Str("target_dir", e.targetDir).
		Msg("Starting restoration")

	if info, err := os.Stat(e.backupPath); err != nil || !info.IsDir() {
		e.logger.Error().
			Str("backup_path", e.backupPath).
			Msg("Backup source directory does not exist")
		return e.fail(fmt.Errorf("%w: %s", ErrSourceMissing, e.backupPath))
	}

	if info, err := os.Stat(e.targetDir); err == nil && !info.IsDir() {
		e.logger.Error().
			Str("target_dir", e.targetDir).
			Msg("Target directory is not a valid directory")
		return e.fail(fmt.Errorf("%w: %s", ErrTargetNotDir, e.targetDir))
	}

	files, err := discoverFiles(e.backupPath, e.patterns)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to expand backup file patterns")
		return e.fail(err)
	}

	if len(files) == 0 {
		e.logger.Warn().
			Str("backup_path", e.backupPath).
			Msg("No backup files found matching configured patterns.")
		metrics.RestoreRuns.WithLabelValues("empty").Inc()
		return true
	}

	e.logger.Info().Int("file_count", len(files)).Msgf("Found %d files to restore.", len(files))

	if e.encryptKey != "" {
		// Decryption is not implemented; the key only marks encrypted backups
		e.logger.Info().Msg("Simulating decryption of backup files...")
	}

	if err := os.MkdirAll(e.targetDir, 0755); err != nil {
		e.logger.Error().
			Err(err).
			Str("target_dir", e.targetDir).
			Msg("Failed to create target directory")
		return e.fail(fmt.Errorf("failed to create target directory: %w", err))
	}

	for _, src := range files {
		if err := ctx.Err(); err != nil {
			e.logger.Error().Err(err).Int("copied", e.copied).Msg("Restoration cancelled")
			return e.fail(err)
		}

		dst := filepath.Join(e.targetDir, filepath.Base(src))
		if err := e.copyFile(src, dst); err != nil {
			e.logger.Error().
				Err(err).
				Str("file", src).
				Int("copied", e.copied).
				Msg("A critical I/O error occurred during file copy")
			return e.fail(fmt.Errorf("failed to copy %s: %w", src, err))
		}

		e.copied++
		metrics.FilesCopied.Inc()
		e.logger.Debug().Str("file", src).Str("destination", dst).Msg("Restored file")
	}

	metrics.RestoreRuns.WithLabelValues("success").Inc()
	e.logger.Info().
		Int("file_count", e.copied).
		Msg("Restoration process completed successfully.")
	return true
}

func (e *Engine) fail(err error) bool {
	e.err = err
	metrics.RestoreRuns.WithLabelValues("error").Inc()
	return false
}
