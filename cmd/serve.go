package cmd

import (
	"context"

	"github.com/mediagrab/mediagrab/pkg/environment"
	"github.com/mediagrab/mediagrab/pkg/health"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewServeCommand returns the monitoring server subcommand.
func NewServeCommand(fs afero.Fs, ctx context.Context, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the health-check endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildCore(fs, env, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			// The reaper cleans up abandoned edit sessions and their files.
			c.Sessions.Start(ctx)

			return health.NewServer(c.Store, logger, port).Start(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", env.HealthPort, "port to listen on")

	return cmd
}
