package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the watchlist server is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(*result)
			return nil
		},
	}
}
