package cli

import (
	"github.com/okian/racebet/internal/server"
	"github.com/okian/racebet/pkg/logger"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := rootOpts.Config()
			if !rootOpts.Verbose {
				if err := logger.SetLevelString(cfg.LogLevel); err != nil {
					_ = logger.SetLevelString("info")
				}
			}
			if err := server.Run(cmd.Context(), cfg); err != nil {
				return WrapExitError(ExitCommandError, ErrCodeServer, "serve", err)
			}
			return nil
		},
	}
}
