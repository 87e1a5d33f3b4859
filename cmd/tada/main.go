package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Makepad-fr/tada/internal/cli"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logger"
	"github.com/Makepad-fr/tada/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// Root flags (apply to every subcommand)
	apiURL := flag.String("api", cfg.API.URL, "base URL of the todo API")
	theme := flag.String("theme", cfg.Theme, "output theme: classic, neon or mono")
	flag.Parse()
	cfg.API.URL = *apiURL
	cfg.Theme = *theme

	printer := ui.NewPrinter(cfg.Theme)

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp(os.Stdout)
		os.Exit(2)
	}

	log, err := logger.New(cfg.Env, cfg.Log.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err, "(continuing without a log file)")
		log = logger.NewNop()
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	log.Debug("starting", zap.String("api", cfg.API.URL), zap.Strings("args", args))

	code := cli.Run(ctx, args, cli.Options{
		Config:  cfg,
		Log:     log,
		Printer: printer,
		In:      os.Stdin,
	})
	stop()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	_ = log.Sync()
	os.Exit(code)
}
