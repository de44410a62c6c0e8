package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Account and login commands",
	}

	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthMeCmd())
	cmd.AddCommand(newAuthDeleteCmd())

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := resolvePassword(cmd, pass)
			if err != nil {
				return err
			}

			result, err := client.Register(cmd.Context(), user, password)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(*result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (prompted for when omitted)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := resolvePassword(cmd, pass)
			if err != nil {
				return err
			}

			result, err := client.Login(cmd.Context(), user, password)
			if err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(*result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (prompted for when omitted)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Long:  "Removes the saved token. Tokens are stateless, so a copy held elsewhere stays valid until it expires.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage("Logged out.")
			return nil
		},
	}
}

func newAuthMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(*result)
			return nil
		},
	}
}

func newAuthDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the logged-in account and its watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete the account without --yes")
			}

			result, err := client.DeleteAccount(cmd.Context())
			if err != nil {
				return err
			}

			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(*result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm account deletion")

	return cmd
}

// resolvePassword returns the --pass value, or asks for one.
// Terminals get a no-echo prompt; piped input is read as a single line.
func resolvePassword(cmd *cobra.Command, pass string) (string, error) {
	if pass != "" {
		return pass, nil
	}

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(data), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("--pass is required when no password is provided on stdin")
	}
	return password, nil
}
