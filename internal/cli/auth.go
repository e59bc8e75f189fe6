package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/cardboard/internal/auth"
	"github.com/Makepad-fr/cardboard/internal/ui"
)

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the bearer token used by the api backend",
	}
	cmd.AddCommand(newAuthLoginCmd(app), newAuthLogoutCmd(app), newAuthStatusCmd(app), newAuthWhoAmICmd(app))
	return cmd
}

func newAuthLoginCmd(app *App) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a token (prompted when --token is not given)",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			if token == "" {
				fmt.Fprint(app.stdout, "Paste your token: ")
				line, err := bufio.NewReader(app.stdin).ReadString('\n')
				if err != nil && strings.TrimSpace(line) == "" {
					return fmt.Errorf("read token: %w", err)
				}
				token = line
			}
			if err := auth.SetToken(token, nil); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			ui.OK(app.stdout, "logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token to save")
	return cmd
}

func newAuthLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the saved token",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			ti, _ := auth.GetToken()
			if ti != nil && ti.Source == "env" {
				ui.OK(app.stdout, "token is provided by "+auth.EnvToken+" (nothing to delete)")
				return nil
			}
			if err := auth.DeleteToken(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK(app.stdout, "logged out")
			return nil
		},
	}
}

func newAuthStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the token comes from and when it expires",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			ti, err := auth.GetToken()
			if err != nil {
				return err
			}
			t := ui.Current()
			if ti == nil {
				fmt.Fprintln(app.stdout, ui.C(t.Muted, "not logged in"))
				fmt.Fprintln(app.stdout, "Run: cardboard auth login")
				return nil
			}
			fmt.Fprintf(app.stdout, "source: %s\n", ti.Source)
			if ti.ExpiresAt != nil {
				fmt.Fprintf(app.stdout, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
			} else {
				fmt.Fprintln(app.stdout, "expires: (unknown)")
			}
			fmt.Fprintln(app.stdout, "env override: "+auth.EnvToken)
			return nil
		},
	}
}

// whoami decodes a JWT locally (unverified); opaque tokens print basic info.
func newAuthWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the claims of the saved token",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			ti, err := auth.GetToken()
			if err != nil {
				return err
			}
			if ti == nil {
				return usagef("not logged in. Run: cardboard auth login")
			}
			if p, ok := auth.JWTPayload(ti.Token); ok {
				fmt.Fprintln(app.stdout, "JWT payload:")
				fmt.Fprintln(app.stdout, p)
				return nil
			}
			fmt.Fprintln(app.stdout, "Opaque token (cannot introspect locally).")
			fmt.Fprintln(app.stdout, "source:", ti.Source)
			return nil
		},
	}
}
