package cli

import (
	"context"

	"github.com/Makepad-fr/cardboard/internal/dashboard"
	"github.com/Makepad-fr/cardboard/internal/tui"
)

func runTUI(ctx context.Context, app *App) error {
	b, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	return tui.Run(ctx, dashboard.New(b, app.log), tui.Options{
		WatchPath: b.watchPath,
		AltScreen: true,
		Input:     app.stdin,
		Output:    app.stdout,
		Log:       app.log,
	})
}
