package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Server is a long-running component started and stopped with the process.
type Server interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type App struct {
	servers         []Server
	shutdownTimeout time.Duration
}

func NewApp(shutdownTimeout time.Duration, servers ...Server) *App {
	return &App{servers: servers, shutdownTimeout: shutdownTimeout}
}

// Run starts every server and blocks until ctx is cancelled or one of them
// fails, then stops all of them in reverse order.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, srv := range a.servers {
		g.Go(func() error {
			return srv.Start(gctx)
		})
	}

	<-gctx.Done()
	slog.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	var stopErrs []error
	for i := len(a.servers) - 1; i >= 0; i-- {
		if err := a.servers[i].Stop(stopCtx); err != nil {
			stopErrs = append(stopErrs, err)
		}
	}

	return errors.Join(g.Wait(), errors.Join(stopErrs...))
}
