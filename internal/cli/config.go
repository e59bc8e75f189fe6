package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/cardboard/internal/ui"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	cmd.AddCommand(newConfigInitCmd(app), newConfigPathCmd(app))
	return cmd
}

// config init writes the effective settings, flags and environment
// included, so they become the new defaults.
func newConfigInitCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to the config file",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			if !force {
				if _, err := os.Stat(app.ConfigPath); err == nil {
					return usagef("%s already exists (use --force to overwrite)", app.ConfigPath)
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("stat config: %w", err)
				}
			}
			if err := app.cfg.Save(app.ConfigPath); err != nil {
				return err
			}
			ui.OK(app.stdout, "wrote "+app.ConfigPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintln(app.stdout, app.ConfigPath)
			return nil
		},
	}
}
