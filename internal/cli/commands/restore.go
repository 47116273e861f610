package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recoveryd-dev/recoveryd/internal/restore"
)

// NewRestoreCmd creates the restore command
func NewRestoreCmd(opts *Options) *cobra.Command {
	var backupPath string

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore a backup directory into the configured target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(cmd, opts, backupPath)
		},
	}

	cmd.Flags().StringVar(&backupPath, "backup", "", "Backup directory to restore from")
	_ = cmd.MarkFlagRequired("backup")

	return cmd
}

func runRestore(cmd *cobra.Command, opts *Options, backupPath string) error {
	cfg, log, err := loadRuntime(opts)
	if err != nil {
		return err
	}

	engine := restore.NewEngine(backupPath, cfg.Recovery, log)
	if !engine.Run(cmd.Context()) {
		return &ExitError{Code: 1, Message: fmt.Sprintf("restore failed: %v", engine.Err())}
	}

	fmt.Fprintf(opts.out(), "Restored %d files from %s to %s\n", engine.Copied(), engine.BackupPath(), engine.TargetDir())
	return nil
}
