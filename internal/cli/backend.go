package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Makepad-fr/cardboard/internal/auth"
	"github.com/Makepad-fr/cardboard/internal/config"
	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/store"
	"github.com/Makepad-fr/cardboard/internal/store/apistore"
	"github.com/Makepad-fr/cardboard/internal/store/filekv"
	"github.com/Makepad-fr/cardboard/internal/store/sqlitekv"
)

// backend is an opened store plus what the callers need to know about it.
type backend struct {
	store.Store
	// watchPath is the file to watch for outside changes; empty when the
	// backend has none.
	watchPath string
	close     func() error
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

func (app *App) openStore(ctx context.Context) (*backend, error) {
	cfg := app.cfg
	switch cfg.Backend {
	case config.BackendFile:
		path := filepath.Join(cfg.DataDir, filekv.DataFileName)
		kv, err := filekv.Open(path, sectionKeys()...)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		app.log.Debug("file backend", zap.String("path", path))
		return &backend{Store: store.NewLocal(kv), watchPath: path}, nil

	case config.BackendSQLite:
		path := filepath.Join(cfg.DataDir, sqlitekv.DBFileName)
		db, err := sqlitekv.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		app.log.Debug("sqlite backend", zap.String("path", path))
		l := store.NewLocal(db)
		return &backend{Store: l, close: l.Close}, nil

	case config.BackendMemory:
		return &backend{Store: store.NewLocal(store.NewMemoryKV())}, nil

	case config.BackendAPI:
		timeout, err := cfg.APITimeout()
		if err != nil {
			return nil, err
		}
		token, err := auth.Token()
		if err != nil {
			return nil, err
		}
		c, err := apistore.New(cfg.API.URL, apistore.WithTimeout(timeout), apistore.WithToken(token))
		if err != nil {
			return nil, err
		}
		app.log.Debug("api backend", zap.String("url", cfg.API.URL), zap.Bool("token", token != ""))
		return &backend{Store: c}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func sectionKeys() []string {
	out := make([]string, len(model.Sections))
	for i, s := range model.Sections {
		out[i] = string(s)
	}
	return out
}
