package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recoveryd-dev/recoveryd/internal/server"
)

// NewServeCmd creates the serve command
func NewServeCmd(opts *Options, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve diagnosis, recovery and status over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime(opts)
			if err != nil {
				return err
			}

			srv, err := server.New(cfg, log, version)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			return srv.Start()
		},
	}
}
