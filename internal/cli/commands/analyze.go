package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/recoveryd-dev/recoveryd/internal/analyze"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd(opts *Options) *cobra.Command {
	var (
		backupPath string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Check a backup directory before restoring it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, backupPath, format)
		},
	}

	cmd.Flags().StringVar(&backupPath, "backup", "", "Backup directory to analyze")
	cmd.Flags().StringVar(&format, "format", "json", "Output format (json or yaml)")
	_ = cmd.MarkFlagRequired("backup")

	return cmd
}

func runAnalyze(opts *Options, backupPath, format string) error {
	cfg, _, err := loadRuntime(opts)
	if err != nil {
		return err
	}

	result := analyze.Analyze(backupPath, cfg.Recovery)

	var out []byte
	switch format {
	case "json":
		out, err = json.MarshalIndent(result, "", "  ")
		out = append(out, '\n')
	case "yaml":
		out, err = yaml.Marshal(result)
	default:
		return fmt.Errorf("unsupported format %q (use json or yaml)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode analysis result: %w", err)
	}

	_, err = opts.out().Write(out)
	return err
}
