package commands

import (
	"github.com/spf13/cobra"

	"github.com/recoveryd-dev/recoveryd/internal/diagnose"
	"github.com/recoveryd-dev/recoveryd/internal/intel"
	"github.com/recoveryd-dev/recoveryd/internal/recovery"
)

// NewIntelligentRestoreCmd creates the intelligent-restore command
func NewIntelligentRestoreCmd(opts *Options) *cobra.Command {
	var (
		errorLog string
		tenant   string
	)

	cmd := &cobra.Command{
		Use:   "intelligent-restore",
		Short: "Diagnose an error log and run the matching restore plan",
		Long: `Diagnose an error log, gather backup and codebase versions, and restore
either directly or through the migration scripts that bridge the versions.

Exit codes: 0 success, 1 failure, 2 no migration path, 3 restore failed,
4 migration failed.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return diagnose.CheckTenant(tenant)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntelligentRestore(cmd, opts, errorLog, tenant)
		},
	}

	cmd.Flags().StringVar(&errorLog, "error-log", "", "Path to the error log that triggered recovery")
	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant that owns the affected files")
	_ = cmd.MarkFlagRequired("error-log")

	return cmd
}

func runIntelligentRestore(cmd *cobra.Command, opts *Options, errorLog, tenant string) error {
	cfg, log, err := loadRuntime(opts)
	if err != nil {
		return err
	}

	orchestrator := recovery.NewOrchestrator(
		diagnose.NewDefaultRegistry(log),
		intel.NewStatic(cfg.Intel, log),
		cfg.Recovery,
		log,
		recovery.WithOutput(opts.out()),
	)

	if code := orchestrator.Execute(cmd.Context(), errorLog, tenant); code != recovery.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}
