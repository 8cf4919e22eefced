package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/folio/internal/api"
	"github.com/dgallion1/folio/internal/config"
	"github.com/dgallion1/folio/internal/documents"
	"github.com/dgallion1/folio/internal/editor"
	"github.com/dgallion1/folio/internal/layout"
	"github.com/dgallion1/folio/internal/pagination"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server.

Serves the document gallery at /documents, the editor session API under
/api/sessions and the document API under /api/documents.

Example:
  folio serve --config ./config/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// pageOptions converts the configured page geometry.
func pageOptions(p config.Page) pagination.Options {
	return pagination.Options{
		PageSize: pagination.PageSize{Width: p.Width, Height: p.Height},
		Padding:  p.Padding,
	}
}

// serverLogOptions keeps request logs at info by default and follows
// --verbose down to debug.
func serverLogOptions() *slog.HandlerOptions {
	level := slog.LevelInfo
	if l := logLevel(); l < level {
		level = l
	}
	return &slog.HandlerOptions{Level: level}
}

func runServe(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewJSONHandler(os.Stdout, serverLogOptions()))

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := openStore(ctx, log)
	if err != nil {
		return err
	}
	defer st.Close()

	page := pageOptions(cfg.Page)
	detector := pagination.NewDetector(layout.NewFontMeasurer(), page)

	sessions := editor.NewStore(detector, cfg.Sessions.TTL, log)
	sessions.Start(ctx, cfg.Sessions.CleanupInterval)

	srv := api.NewServer(documents.NewService(st, log), sessions, st, page, log, cfg.Server)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting folio", "port", cfg.Server.Port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		sessions.Stop()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	sessions.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
