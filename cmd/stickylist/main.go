// Package main is the entry point for the stickylist CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"stickylist/internal/backend/googletasks"
	"stickylist/internal/backend/stickyapi"
	"stickylist/internal/cli"
	"stickylist/internal/commands"
	"stickylist/internal/config"
	"stickylist/internal/mirror"
	"stickylist/internal/service"
	"stickylist/internal/session"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, cli.Factories{
		Store:   mirror.Open,
		Service: newService,
	})
	dispatcher.SetInput(os.Stdin)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// newService picks the backend named by cfg.Backend.
func newService(ctx context.Context, cfg *config.Config, store mirror.Store, logger log.FieldLogger) (service.Service, error) {
	if cfg.Backend == config.BackendGoogleTasks {
		return googletasks.New(ctx, cfg)
	}
	return stickyapi.New(cfg, session.TokenSource(ctx, store), logger), nil
}
