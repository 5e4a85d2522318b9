package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"restaurant-billing/internal/logger"
	"restaurant-billing/internal/metrics"
	"restaurant-billing/internal/services/billing"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the billing HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (defaults to server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp("billing-service", os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	requestID := logger.GenerateRequestID()
	port := a.cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}

	m := metrics.New()
	service, err := a.newService(ctx, m)
	if err != nil {
		a.log.Error("service_failed", "Billing service failed to start", requestID, err, nil)
		return err
	}
	handler := billing.NewHandler(service, m, a.log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("service_started", fmt.Sprintf("Billing service started on port %d", port), requestID, map[string]interface{}{
			"port":    port,
			"storage": a.cfg.Billing.Storage,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		a.log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
	case err := <-errCh:
		if err != nil {
			a.log.Error("server_failed", "HTTP server failed", requestID, err, nil)
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	a.log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
	return nil
}
