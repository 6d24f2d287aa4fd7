// Package app wires configuration into the running services shared by the
// CLI and the signage daemon.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"menuboard/internal/config"
	"menuboard/internal/connectors"
	"menuboard/internal/logging"
	"menuboard/internal/pipeline"
	"menuboard/internal/server"
	"menuboard/internal/signage"
	"menuboard/internal/storage"
	"menuboard/internal/weather"
)

type App struct {
	Config    config.Config
	DB        *storage.DB
	Processor *pipeline.ProcessingService
	Log       *zap.Logger
}

// Open opens the database and the configured spreadsheet connector.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	log = logging.OrNop(log)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn, err := connectors.New(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	fetch := connectors.NewFetchService(db, cfg.RawDir, conn)
	return &App{
		Config:    cfg,
		DB:        db,
		Processor: pipeline.NewProcessingService(db, cfg, fetch, log.Named("pipeline")),
		Log:       log,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

// Signage builds the TV loop, with weather when enabled.
func (a *App) Signage() *signage.Service {
	var opts []signage.Option
	if a.Config.WeatherEnabled {
		opts = append(opts, signage.WithWeather(weather.NewClient(a.Config)))
	}
	return signage.NewService(a.Config, a.Processor, a.Log.Named("signage"), opts...)
}

// Serve runs the signage loop and the HTTP server until ctx is cancelled
// or one of them fails. A file source is also watched and refreshed on save.
func (a *App) Serve(ctx context.Context) error {
	screen := a.Signage()
	srv := server.New(a.Config, screen, a.Processor, a.Log.Named("http"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return screen.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx, a.Config.HTTPAddr) })
	if a.Config.SheetProvider == "file" {
		g.Go(func() error {
			return connectors.WatchFile(gctx, a.Config.SheetFile, 300*time.Millisecond, a.Log.Named("watch"), func() {
				_ = screen.Refresh(gctx)
			})
		})
	}
	return g.Wait()
}
