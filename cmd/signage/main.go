package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"menuboard/internal/app"
	"menuboard/internal/config"
	"menuboard/internal/logging"
)

func main() {
	cfg, err := config.Load()
	must(err)

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	must(err)
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.Open(ctx, cfg, log)
	must(err)
	defer a.Close()

	must(a.Serve(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
