package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MJE43/swipematch/internal/api"
	"github.com/MJE43/swipematch/internal/catalog"
	"github.com/MJE43/swipematch/internal/credentials"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.HTTPAddr = addr
			}
			return a.serve(cmd)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func (a *app) serve(cmd *cobra.Command) error {
	db, err := a.openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	creds := credentials.NewStore(a.cfg.Keyring.Service, a.cfg.Keyring.FallbackPath)
	catKey, err := creds.GetCatAPIKey()
	if err != nil && !errors.Is(err, credentials.ErrNotFound) {
		a.logger.Warn("cat api key unavailable", zap.Error(err))
	}
	client := catalog.NewClient(a.cfg.CatalogClientConfig(catKey, api.UserAgent()))

	srv, err := api.NewServer(api.Options{
		DB:             db,
		Catalog:        client,
		Logger:         a.logger,
		Gesture:        a.cfg.Gesture,
		Ranges:         a.cfg.Ranges,
		RequestTimeout: a.cfg.RequestTimeout,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server",
			zap.String("addr", a.cfg.HTTPAddr),
			zap.String("db", a.cfg.DBPath),
			zap.Bool("cat_api_key", catKey != ""),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("shutdown error", zap.Error(err))
		return err
	}
	return nil
}
