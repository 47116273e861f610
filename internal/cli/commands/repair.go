package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recoveryd-dev/recoveryd/internal/diagnose"
)

// NewRepairCmd creates the repair command
func NewRepairCmd(opts *Options) *cobra.Command {
	var (
		errorLog string
		tenant   string
	)

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Suggest a repair script for an error log",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return diagnose.CheckTenant(tenant)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(opts, errorLog, tenant)
		},
	}

	cmd.Flags().StringVar(&errorLog, "error-log", "", "Path to the error log to diagnose")
	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant that owns the affected files")
	_ = cmd.MarkFlagRequired("error-log")

	return cmd
}

func runRepair(opts *Options, errorLog, tenant string) error {
	_, log, err := loadRuntime(opts)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(errorLog)
	if err != nil {
		return fmt.Errorf("failed to read error log: %w", err)
	}

	out := opts.out()
	script, found := diagnose.NewDefaultRegistry(log).FindRepair(string(content), tenant)
	if !found {
		fmt.Fprintln(out, "No repair script could be generated for the given log.")
		return nil
	}

	fmt.Fprintln(out, "--- Suggested Repair Script ---")
	fmt.Fprintln(out, script)
	fmt.Fprintln(out, "-------------------------------")
	return nil
}
