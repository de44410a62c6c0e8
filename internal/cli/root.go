package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage your movie watchlist from the terminal",
		Long: `watchlist talks to a movie watchlist server.

Register with "watchlist auth register", then log in once with
"watchlist auth login". The token is saved to the token file and sent with
every later command until it expires (2h by default); log in again after that.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			var trace io.Writer
			if cfg.Verbose {
				trace = cmd.ErrOrStderr()
			}
			client = NewClient(cfg.ServerURL, cfg.Token, trace)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Watchlist server URL (env: "+envServer+")")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Bearer token, overrides the token file (env: "+envToken+")")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Where login saves the token (env: "+envTokenFile+")")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Trace requests and their request ids to stderr")

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newMoviesCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
