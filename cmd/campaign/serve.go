package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ersonp/campaign-core/internal/application/handlers"
	"github.com/ersonp/campaign-core/internal/infrastructure/metrics"
)

func newServeCmd() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Serves the REST API until interrupted, then drains in-flight requests.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), listenAddr)
		},
	}

	cmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Listen address (overrides config)")

	return cmd
}

func runServe(ctx context.Context, listenAddr string) error {
	return withDeps(ctx, func(d *Deps) error {
		cfg := d.Config.Server
		if listenAddr != "" {
			cfg.ListenAddr = listenAddr
		}

		d.Logger.Info().
			Str("storage", d.Config.Storage.Backend).
			Str("sessions", d.Config.Sessions.Backend).
			Msg("starting")

		server := handlers.NewServer(cfg, handlers.Services{
			Auth:        d.Auth,
			Journals:    d.Journals,
			Entities:    d.Entities,
			EntityTypes: d.EntityTypes,
		}, metrics.New(), d.Logger)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serving: %w", err)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	})
}
