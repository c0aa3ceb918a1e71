package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chapterdesk/internal/api"
	"github.com/blackwell-systems/chapterdesk/internal/session"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	Long: `Serve the chapter dashboards over HTTP: member directory, networking
spotlight, officer action items, events and budget, dues and the social
feed. Prometheus metrics are exposed on /metrics.

Spotlight seeds are kept in Redis when redis.addr is set, so every replica
shows a session the same order; otherwise they are kept in memory.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides http.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()
	if serveAddr != "" {
		e.cfg.HTTP.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()

	seeds, closeSeeds, err := openSeedStore(ctx, e)
	if err != nil {
		return err
	}
	defer closeSeeds()
	if mem, ok := seeds.(*session.MemoryStore); ok {
		go sweepSeeds(ctx, mem, time.Hour)
	}

	srv := &http.Server{
		Addr:         e.cfg.HTTP.Addr,
		Handler:      api.New(e.db, e.cfg, seeds, e.log).Routes(),
		ReadTimeout:  e.cfg.HTTP.ReadTimeout,
		WriteTimeout: e.cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info("server listening", "addr", srv.Addr, "db", e.cfg.DBPath, "redis", e.cfg.Redis.Addr != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	e.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	e.log.Info("server exited")
	return nil
}

// sweepSeeds periodically drops expired in-memory seeds until ctx ends.
func sweepSeeds(ctx context.Context, store *session.MemoryStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Sweep()
		}
	}
}
