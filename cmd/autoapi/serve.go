package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/autoapi/internal/api"
	"github.com/dgallion1/autoapi/internal/pipeline"
)

// newServeCommand creates the `autoapi serve` command.
func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the preview server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	roots, err := a.cfg.LoadRoots(a.cfg.RootsFile)
	if err != nil {
		return err
	}

	orch := pipeline.NewOrchestrator(a.cfg, pipeline.NewRunner(a.imp, a.cfg, a.log), a.log)
	orch.Start(ctx)

	httpServer := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      api.NewServer(orch, a.imp, roots, a.log, a.cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown. The queue is closed only once in-flight requests
	// have drained.
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		a.log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	a.log.Info("starting autoapi", "port", a.cfg.Port, "roots", len(roots))
	err = httpServer.ListenAndServe()
	stop()
	<-shutdownDone
	orch.Stop()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Error("server error", "error", err)
		return err
	}
	return nil
}
