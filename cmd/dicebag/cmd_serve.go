package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chosenoffset/dicebag/pkg/dicebag"
	"github.com/chosenoffset/dicebag/pkg/dicebag/actions"
	"github.com/chosenoffset/dicebag/pkg/dicebag/dashboard"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the roll dashboard until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			server, _, err := a.newDashboard()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, server, a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

// newDashboard wires an engine to a dashboard server so that every roll
// and rejection is streamed to websocket clients.
func (a *app) newDashboard() (*dashboard.Server, *dicebag.Engine, error) {
	engine, err := a.newEngine(nil)
	if err != nil {
		return nil, nil, err
	}

	server := dashboard.NewServer(a.cfg.Addr, engine, engine.Collector(), a.logger)
	server.SetMaxClients(a.cfg.MaxClients)

	handler := actions.NewDashboardHandler(server.SendRollUpdate)
	engine.RegisterHandler(actions.RollAction, handler)
	engine.RegisterHandler(actions.RejectedAction, handler)
	return server, engine, nil
}

// runServer serves until ctx is cancelled or the server fails.
func runServer(ctx context.Context, server *dashboard.Server, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down dashboard")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
