// Package analyze runs quick heuristics over a backup directory before it is
// restored: a database dump must exist and be non-empty, and logs should exist.
package analyze

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/recoveryd-dev/recoveryd/internal/config"
)

// Status is the overall verdict of an analysis
type Status string

const (
	StatusOK    Status = "ok"
	StatusWarn  Status = "warn"
	StatusError Status = "error"
)

const (
	defaultSQLPattern = "*.sql"
	defaultLogPattern = "*.log"
)

// Result is the analysis outcome. Details holds either an "error"/"warning"
// message or the file statistics of a healthy backup.
type Result struct {
	Status  Status         `json:"status" yaml:"status"`
	Details map[string]any `json:"details" yaml:"details"`
}

func failed(format string, args ...any) Result {
	return Result{Status: StatusError, Details: map[string]any{"error": fmt.Sprintf(format, args...)}}
}

// Analyze inspects backupPath using the "db" and "logs" patterns from the
// recovery settings, defaulting to *.sql and *.log.
func Analyze(backupPath string, settings config.RecoverySettings) Result {
	info, err := os.Stat(backupPath)
	if err != nil || !info.IsDir() {
		return failed("Backup directory not found: %s", backupPath)
	}

	sqlPattern := patternOr(settings.BackupFormats, "db", defaultSQLPattern)
	logPattern := patternOr(settings.BackupFormats, "logs", defaultLogPattern)

	sqlFiles, err := filepath.Glob(filepath.Join(backupPath, sqlPattern))
	if err != nil {
		return failed("Invalid SQL pattern '%s': %v", sqlPattern, err)
	}
	logFiles, err := filepath.Glob(filepath.Join(backupPath, logPattern))
	if err != nil {
		return failed("Invalid log pattern '%s': %v", logPattern, err)
	}

	if len(sqlFiles) == 0 {
		return failed("No SQL files matching '%s' found.", sqlPattern)
	}

	first, err := os.Stat(sqlFiles[0])
	if err != nil {
		return failed("Cannot read SQL file '%s': %v", sqlFiles[0], err)
	}
	if first.Size() == 0 {
		return failed("SQL file '%s' is empty.", sqlFiles[0])
	}

	if len(logFiles) == 0 {
		return Result{
			Status:  StatusWarn,
			Details: map[string]any{"warning": fmt.Sprintf("No log files matching '%s' found.", logPattern)},
		}
	}

	return Result{
		Status: StatusOK,
		Details: map[string]any{
			"sql_file_count":      len(sqlFiles),
			"log_file_count":      len(logFiles),
			"first_sql_file_size": first.Size(),
		},
	}
}

func patternOr(formats map[string]string, key, fallback string) string {
	if p, ok := formats[key]; ok && p != "" {
		return p
	}
	return fallback
}
