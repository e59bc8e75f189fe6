package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/cardboard/internal/config"
	"github.com/Makepad-fr/cardboard/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	var addr, token string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and the HTML dashboard",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.cfg
			if cfg.Backend == config.BackendAPI {
				return usagef("serve needs a local backend (file, sqlite or memory), not api")
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if token == "" {
				token = cfg.Server.Token
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b, err := app.openStore(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			srv := server.New(b, server.Config{
				Addr:    addr,
				Token:   token,
				Backend: cfg.Backend,
			}, app.log)
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, PORT overrides the port)")
	cmd.Flags().StringVar(&token, "token", "", "require this bearer token on /api/")
	return cmd
}
