package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newMoviesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "movies",
		Aliases: []string{"movie"},
		Short:   "Watchlist commands (require login)",
	}

	cmd.AddCommand(newMoviesAddCmd())
	cmd.AddCommand(newMoviesListCmd())
	cmd.AddCommand(newMoviesGetCmd())
	cmd.AddCommand(newMoviesUpdateCmd())
	cmd.AddCommand(newMoviesDeleteCmd())

	return cmd
}

func newMoviesAddCmd() *cobra.Command {
	var title, language, overview string
	var watched bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a movie to the watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.AddMovie(cmd.Context(), NewMovie{
				Title:    title,
				Language: language,
				Overview: overview,
				Watched:  watched,
			})
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(*result)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Movie title (required)")
	cmd.Flags().StringVar(&language, "language", "", "Language (default \"Unknown\")")
	cmd.Flags().StringVar(&overview, "overview", "", "Short overview")
	cmd.Flags().BoolVar(&watched, "watched", false, "Mark as already watched")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newMoviesListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.ListMovies(cmd.Context(), status)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(*result)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter: watched or unwatched")

	return cmd
}

func newMoviesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.GetMovie(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(*result)
			return nil
		},
	}
}

func newMoviesUpdateCmd() *cobra.Command {
	var title, language, overview string
	var watched bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a movie; only the given flags are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if cmd.Flags().Changed("title") {
				req["title"] = title
			}
			if cmd.Flags().Changed("language") {
				req["language"] = language
			}
			if cmd.Flags().Changed("overview") {
				req["overview"] = overview
			}
			if cmd.Flags().Changed("watched") {
				req["watched"] = watched
			}
			if len(req) == 0 {
				return errors.New("nothing to update: pass at least one of --title, --language, --overview, --watched")
			}
			result, err := client.UpdateMovie(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(*result)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&language, "language", "", "New language")
	cmd.Flags().StringVar(&overview, "overview", "", "New overview")
	cmd.Flags().BoolVar(&watched, "watched", false, "Watched state (use --watched=false to unmark)")

	return cmd
}

func newMoviesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a movie from the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.DeleteMovie(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(*result)
			return nil
		},
	}
}
